package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// DataHandler handles bulk data maintenance.
type DataHandler struct {
	dataService services.DataService
	logger      *zap.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(dataService services.DataService, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		logger:      logger,
	}
}

// RegisterRoutes registers the data handler's routes on the given mux.
func (h *DataHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	mux.HandleFunc("DELETE /api/data", scope(h.EraseAll))
}

// EraseAll handles DELETE /api/data
// Deletes the catalog, the ledger and the import history. Datacenters,
// MSF configs and settings are kept.
func (h *DataHandler) EraseAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.dataService.EraseAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to erase data", zap.Error(err))
		writeServiceError(w, h.logger, err, "erase_failed")
		return
	}
	writeOK(w, h.logger, result)
}
