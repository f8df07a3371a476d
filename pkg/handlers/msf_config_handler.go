package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// MsfConfigHandler manages curated per-MSF presentation overrides.
type MsfConfigHandler struct {
	configService services.MsfConfigService
	logger        *zap.Logger
}

// NewMsfConfigHandler creates a new MSF config handler.
func NewMsfConfigHandler(configService services.MsfConfigService, logger *zap.Logger) *MsfConfigHandler {
	return &MsfConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// RegisterRoutes registers the MSF config handler's routes on the given mux.
func (h *MsfConfigHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	base := "/api/msf-configs"

	mux.HandleFunc("GET "+base, scope(h.List))
	mux.HandleFunc("GET "+base+"/{msf}", scope(h.Get))
	mux.HandleFunc("PUT "+base+"/{msf}", scope(h.Put))
	mux.HandleFunc("DELETE "+base+"/{msf}", scope(h.Delete))
}

// List handles GET /api/msf-configs
func (h *MsfConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list MSF configs", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_msf_configs_failed")
		return
	}
	if configs == nil {
		configs = []*models.MsfConfig{}
	}
	writeOK(w, h.logger, configs)
}

// Get handles GET /api/msf-configs/{msf}
func (h *MsfConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	cfg, err := h.configService.Get(r.Context(), msf)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_msf_config_failed")
		return
	}
	writeOK(w, h.logger, cfg)
}

// Put handles PUT /api/msf-configs/{msf}
// Fields absent from the body keep their stored values.
func (h *MsfConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	var patch models.MsfConfigPatch
	if !decodeJSON(w, r, h.logger, &patch) {
		return
	}

	cfg, err := h.configService.Put(r.Context(), msf, &patch)
	if err != nil {
		h.logger.Error("Failed to save MSF config",
			zap.String("msf", msf),
			zap.Error(err))
		writeServiceError(w, h.logger, err, "save_msf_config_failed")
		return
	}
	writeOK(w, h.logger, cfg)
}

// Delete handles DELETE /api/msf-configs/{msf}
func (h *MsfConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.configService.Delete(r.Context(), msf); err != nil {
		writeServiceError(w, h.logger, err, "delete_msf_config_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "MSF config deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
