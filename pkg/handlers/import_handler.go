package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/config"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// UnsupportedFileMessage is returned when an upload is neither CSV nor XLSX.
const UnsupportedFileMessage = "Only .csv and .xlsx files are allowed"

// multipart parts beyond this are spooled to disk by ParseMultipartForm.
const multipartMemory = 32 << 20

// ImportHandler handles inventory file uploads and the import audit trail.
type ImportHandler struct {
	importService services.ImportService
	cfg           config.ImportConfig
	logger        *zap.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importService services.ImportService, cfg config.ImportConfig, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes registers the import handler's routes on the given mux.
func (h *ImportHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	mux.HandleFunc("POST /api/imports", scope(h.Upload))
	mux.HandleFunc("GET /api/imports/history", scope(h.History))
}

// Upload handles POST /api/imports
// Expects a multipart form with a "file" part and an optional "datacenter" field.
// A soft failure (no usable rows) is reported with 200 and success=false.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, "file_too_large", "Uploaded file exceeds the size limit")
			return
		}
		writeError(w, h.logger, http.StatusBadRequest, "invalid_upload", "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "missing_file", "No file uploaded")
		return
	}
	defer file.Close()

	datacenter := strings.TrimSpace(r.FormValue("datacenter"))

	result, err := h.importService.Import(r.Context(), header.Filename, datacenter, file)
	if err != nil {
		var reconcileErr *services.ReconciliationError
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedFormat):
			h.writeResult(w, http.StatusBadRequest, &models.ImportResult{Success: false, Error: UnsupportedFileMessage})
		case errors.As(err, &reconcileErr):
			h.writeResult(w, http.StatusInternalServerError, &models.ImportResult{Success: false, Error: err.Error()})
		default:
			h.logger.Warn("Failed to parse upload",
				zap.String("filename", header.Filename),
				zap.Error(err))
			h.writeResult(w, http.StatusBadRequest, &models.ImportResult{Success: false, Error: err.Error()})
		}
		return
	}

	h.writeResult(w, http.StatusOK, result)
}

// The multipart reader does not always wrap the limit error with %w.
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func (h *ImportHandler) writeResult(w http.ResponseWriter, status int, result *models.ImportResult) {
	if err := WriteJSON(w, status, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// History handles GET /api/imports/history
func (h *ImportHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, ok := ParseLimit(w, r, h.cfg.HistoryLimit, h.logger)
	if !ok {
		return
	}

	records, err := h.importService.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list import history", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_imports_failed")
		return
	}
	if records == nil {
		records = []*models.ImportRecord{}
	}

	writeOK(w, h.logger, records)
}
