package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// ProductWithConfig is a product joined with its curated config. Config is
// always present in the JSON, null when the product has none.
type ProductWithConfig struct {
	*models.InventoryItem
	Config *models.MsfConfig `json:"config"`
}

// QuantityResponse for GET /api/products/{msf}/quantity
type QuantityResponse struct {
	MSF        string  `json:"msf"`
	Datacenter *string `json:"datacenter"`
	Quantity   int     `json:"quantity"`
}

// UpdateCategoryRequest for PATCH /api/products/{msf}/category
type UpdateCategoryRequest struct {
	Category string `json:"category"`
}

// ProductHandler handles catalog reads and curation.
type ProductHandler struct {
	inventoryService services.InventoryService
	logger           *zap.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(inventoryService services.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers the product handler's routes on the given mux.
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	base := "/api/products"

	mux.HandleFunc("GET "+base, scope(h.List))
	mux.HandleFunc("GET "+base+"/search", scope(h.Search))
	mux.HandleFunc("GET "+base+"/with-config", scope(h.ListWithConfig))
	mux.HandleFunc("GET "+base+"/{msf}", scope(h.Get))
	mux.HandleFunc("GET "+base+"/{msf}/quantity", scope(h.Quantity))
	mux.HandleFunc("PATCH "+base+"/{msf}/category", scope(h.UpdateCategory))
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.ListProducts(r.Context(), DatacenterParam(r))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_products_failed")
		return
	}
	writeOK(w, h.logger, items)
}

// Search handles GET /api/products/search
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.Search(r.Context(), r.URL.Query().Get("q"), DatacenterParam(r))
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		writeServiceError(w, h.logger, err, "search_products_failed")
		return
	}
	writeOK(w, h.logger, items)
}

// ListWithConfig handles GET /api/products/with-config
func (h *ProductHandler) ListWithConfig(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.ListProducts(r.Context(), DatacenterParam(r))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_products_failed")
		return
	}

	out := make([]ProductWithConfig, len(items))
	for i, item := range items {
		out[i] = ProductWithConfig{InventoryItem: item, Config: item.Config}
	}
	writeOK(w, h.logger, out)
}

// Get handles GET /api/products/{msf}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	detail, err := h.inventoryService.GetProduct(r.Context(), msf, DatacenterParam(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "get_product_failed")
		return
	}
	writeOK(w, h.logger, detail)
}

// Quantity handles GET /api/products/{msf}/quantity
func (h *ProductHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	datacenter := DatacenterParam(r)
	quantity, err := h.inventoryService.CurrentQuantity(r.Context(), msf, datacenter)
	if err != nil {
		h.logger.Error("Failed to resolve quantity",
			zap.String("msf", msf),
			zap.Error(err))
		writeServiceError(w, h.logger, err, "get_quantity_failed")
		return
	}

	writeOK(w, h.logger, QuantityResponse{MSF: msf, Datacenter: datacenter, Quantity: quantity})
}

// UpdateCategory handles PATCH /api/products/{msf}/category
func (h *ProductHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	msf, ok := ParseMSF(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_category", "Category is required")
		return
	}

	if err := h.inventoryService.UpdateCategory(r.Context(), msf, req.Category); err != nil {
		writeServiceError(w, h.logger, err, "update_category_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Category updated"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
