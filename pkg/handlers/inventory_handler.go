package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler serves the grouped inventory view and its spreadsheet export.
type InventoryHandler struct {
	inventoryService services.InventoryService
	now              func() time.Time
	logger           *zap.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService services.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		now:              time.Now,
		logger:           logger,
	}
}

// RegisterRoutes registers the inventory handler's routes on the given mux.
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/inventory", scope(h.Grouped))
	mux.HandleFunc("GET /api/inventory/export", scope(h.Export))
}

// Grouped handles GET /api/inventory
func (h *InventoryHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.inventoryService.GroupedInventory(r.Context(), DatacenterParam(r))
	if err != nil {
		h.logger.Error("Failed to group inventory", zap.Error(err))
		writeServiceError(w, h.logger, err, "group_inventory_failed")
		return
	}
	writeOK(w, h.logger, groups)
}

// Export handles GET /api/inventory/export
// The workbook is rendered in memory so a failure can still be reported as JSON.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	datacenter := DatacenterParam(r)

	var buf bytes.Buffer
	if err := h.inventoryService.ExportXLSX(r.Context(), datacenter, &buf); err != nil {
		h.logger.Error("Failed to export inventory", zap.Error(err))
		writeServiceError(w, h.logger, err, "export_failed")
		return
	}

	name := "inventory"
	if datacenter != nil && *datacenter != "" {
		name += "-" + *datacenter
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, h.now().Format("2006-01-02"))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to stream export", zap.Error(err))
	}
}
