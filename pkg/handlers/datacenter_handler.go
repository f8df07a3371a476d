package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// SaveDatacenterRequest for POST /api/datacenters
type SaveDatacenterRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
}

// RenameDatacenterRequest for PUT /api/datacenters/{id}
type RenameDatacenterRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// DatacenterHandler manages the datacenter registry.
type DatacenterHandler struct {
	datacenterService services.DatacenterService
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewDatacenterHandler creates a new datacenter handler.
func NewDatacenterHandler(datacenterService services.DatacenterService, logger *zap.Logger) *DatacenterHandler {
	return &DatacenterHandler{
		datacenterService: datacenterService,
		validate:          validator.New(),
		logger:            logger,
	}
}

// RegisterRoutes registers the datacenter handler's routes on the given mux.
func (h *DatacenterHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	base := "/api/datacenters"

	mux.HandleFunc("GET "+base, scope(h.List))
	mux.HandleFunc("POST "+base, scope(h.Save))
	mux.HandleFunc("PUT "+base+"/{id}", scope(h.Rename))
	mux.HandleFunc("DELETE "+base+"/{id}", scope(h.Delete))
}

// List handles GET /api/datacenters
func (h *DatacenterHandler) List(w http.ResponseWriter, r *http.Request) {
	datacenters, err := h.datacenterService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list datacenters", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_datacenters_failed")
		return
	}
	if datacenters == nil {
		datacenters = []*models.Datacenter{}
	}
	writeOK(w, h.logger, datacenters)
}

// Save handles POST /api/datacenters
// Creates the datacenter or renames it when the id already exists.
func (h *DatacenterHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveDatacenterRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "ID and name are required")
		return
	}

	dc := &models.Datacenter{ID: req.ID, Name: req.Name}
	if err := h.datacenterService.Save(r.Context(), dc); err != nil {
		h.logger.Error("Failed to save datacenter",
			zap.String("id", req.ID),
			zap.Error(err))
		writeServiceError(w, h.logger, err, "save_datacenter_failed")
		return
	}
	writeOK(w, h.logger, dc)
}

// Rename handles PUT /api/datacenters/{id}
func (h *DatacenterHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatacenterID(w, r, h.logger)
	if !ok {
		return
	}

	var req RenameDatacenterRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	if err := h.datacenterService.Rename(r.Context(), id, req.Name); err != nil {
		writeServiceError(w, h.logger, err, "rename_datacenter_failed")
		return
	}
	writeOK(w, h.logger, &models.Datacenter{ID: id, Name: req.Name})
}

// Delete handles DELETE /api/datacenters/{id}
// Removes the datacenter together with its ledger rows.
func (h *DatacenterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatacenterID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.datacenterService.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "delete_datacenter_failed")
		return
	}
	writeOK(w, h.logger, result)
}
