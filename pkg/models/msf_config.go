package models

import "time"

// MsfConfig holds curated, per-MSF presentation overrides. It never affects
// reconciliation; the catalog keeps the imported classification.
// Stored in cbls_msf_config table.
type MsfConfig struct {
	MSF              string    `json:"msf"`
	ShortName        *string   `json:"short_name"`
	CategoryOverride *string   `json:"category_override"`
	Notes            *string   `json:"notes"`
	Hidden           bool      `json:"hidden"`
	CustomOrder      *int      `json:"custom_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MsfConfigPatch carries a partial update. Nil fields keep the stored value.
type MsfConfigPatch struct {
	ShortName        *string `json:"short_name"`
	CategoryOverride *string `json:"category_override"`
	Notes            *string `json:"notes"`
	Hidden           *bool   `json:"hidden"`
	CustomOrder      *int    `json:"custom_order"`
}

// Apply merges the patch onto cfg in place.
func (p *MsfConfigPatch) Apply(cfg *MsfConfig) {
	if p.ShortName != nil {
		cfg.ShortName = StringPtr(*p.ShortName)
	}
	if p.CategoryOverride != nil {
		cfg.CategoryOverride = StringPtr(*p.CategoryOverride)
	}
	if p.Notes != nil {
		cfg.Notes = StringPtr(*p.Notes)
	}
	if p.Hidden != nil {
		cfg.Hidden = *p.Hidden
	}
	if p.CustomOrder != nil {
		order := *p.CustomOrder
		cfg.CustomOrder = &order
	}
}
