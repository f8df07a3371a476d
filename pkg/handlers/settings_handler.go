package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// SettingsHandler serves the display settings. Settings live in a file, so no
// database scope is needed.
type SettingsHandler struct {
	settingsService services.SettingsService
	logger          *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsService services.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// RegisterRoutes registers the settings handler's routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/settings", h.Get)
	mux.HandleFunc("PUT /api/settings", h.Put)
	mux.HandleFunc("GET /api/settings/categories", h.Categories)
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "get_settings_failed")
		return
	}
	writeOK(w, h.logger, settings)
}

// Put handles PUT /api/settings
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var settings models.AppSettings
	if !decodeJSON(w, r, h.logger, &settings) {
		return
	}

	if err := h.settingsService.Save(r.Context(), &settings); err != nil {
		h.logger.Warn("Failed to save settings", zap.Error(err))
		writeServiceError(w, h.logger, err, "save_settings_failed")
		return
	}
	writeOK(w, h.logger, &settings)
}

// Categories handles GET /api/settings/categories
func (h *SettingsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	names, err := h.settingsService.CategoryNames(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "get_categories_failed")
		return
	}
	writeOK(w, h.logger, names)
}
