package models

import "sort"

// CategoryConfig controls how a category is presented.
type CategoryConfig struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Color string `json:"color" yaml:"color"`
	Order int    `json:"order" yaml:"order"`
}

// AppSettings are the user-editable display settings.
type AppSettings struct {
	LowStockThreshold      int              `json:"lowStockThreshold" yaml:"low_stock_threshold" validate:"gte=0"`
	CriticalStockThreshold int              `json:"criticalStockThreshold" yaml:"critical_stock_threshold" validate:"gte=0,ltefield=LowStockThreshold"`
	Categories             []CategoryConfig `json:"categories" yaml:"categories" validate:"dive"`
}

// StockLevel classifies a quantity against the thresholds.
func (s *AppSettings) StockLevel(quantity int) string {
	switch {
	case quantity < s.CriticalStockThreshold:
		return StockLevelCritical
	case quantity < s.LowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelOK
	}
}

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		LowStockThreshold:      20,
		CriticalStockThreshold: 10,
		Categories: []CategoryConfig{
			{Name: "400G AOC", Color: "blue", Order: 0},
			{Name: "400G PSM", Color: "purple", Order: 1},
			{Name: "100G AOC", Color: "green", Order: 2},
			{Name: "100G PSM4", Color: "teal", Order: 3},
			{Name: "SMLC", Color: "yellow", Order: 4},
			{Name: "Copper", Color: "orange", Order: 5},
			{Name: "200G Y AOC", Color: "pink", Order: 6},
			{Name: "MTP Fiber", Color: "indigo", Order: 7},
			{Name: "Fiber Jumpers", Color: "cyan", Order: 8},
			{Name: "Transceiver", Color: "red", Order: 9},
			{Name: "Other", Color: "gray", Order: 10},
		},
	}
}

// OrderedCategories returns the categories sorted by Order, stable on ties.
func (s *AppSettings) OrderedCategories() []CategoryConfig {
	out := make([]CategoryConfig, len(s.Categories))
	copy(out, s.Categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
