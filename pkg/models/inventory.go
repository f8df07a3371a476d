package models

// Stock level labels derived from the configured thresholds.
const (
	StockLevelOK       = "ok"
	StockLevelLow      = "low"
	StockLevelCritical = "critical"
)

// UncategorizedLabel groups catalog entries with neither a category nor an override.
const UncategorizedLabel = "Uncategorized"

// InventoryItem is a catalog entry joined with its current quantity.
type InventoryItem struct {
	CatalogEntry
	Quantity   int        `json:"quantity"`
	StockLevel string     `json:"stock_level,omitempty"`
	Config     *MsfConfig `json:"config,omitempty"`
}

// EffectiveCategory applies the curated override, then the imported category.
func (i *InventoryItem) EffectiveCategory() string {
	if i.Config != nil && i.Config.CategoryOverride != nil && *i.Config.CategoryOverride != "" {
		return *i.Config.CategoryOverride
	}
	if i.Category != nil && *i.Category != "" {
		return *i.Category
	}
	return UncategorizedLabel
}

// DisplayName is the curated short name when set, otherwise the item name.
func (i *InventoryItem) DisplayName() string {
	if i.Config != nil && i.Config.ShortName != nil && *i.Config.ShortName != "" {
		return *i.Config.ShortName
	}
	return i.ItemName
}

// Hidden reports whether the entry is hidden from grouped views.
func (i *InventoryItem) Hidden() bool {
	return i.Config != nil && i.Config.Hidden
}

// ProductDetail is a catalog entry with its ledger history, newest first.
type ProductDetail struct {
	Product *CatalogEntry  `json:"product"`
	History []*LedgerEntry `json:"history"`
}

// InventoryFilter narrows inventory reads. A nil Datacenter means every datacenter;
// a pointer to "" selects the unscoped datacenter.
type InventoryFilter struct {
	Datacenter *string
	Search     string
}

// CategoryGroup is one section of the grouped inventory view.
type CategoryGroup struct {
	Category      string           `json:"category"`
	Color         string           `json:"color,omitempty"`
	TotalQuantity int              `json:"total_quantity"`
	Items         []*InventoryItem `json:"items"`
}
