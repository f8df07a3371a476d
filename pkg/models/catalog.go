package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogEntry describes one cable part, keyed by its MSF identifier.
// Stored in cbls_catalog table.
type CatalogEntry struct {
	MSF              string              `json:"msf"`
	ItemName         string              `json:"item_name"`
	ItemGroup        *string             `json:"item_group"`
	Category         *string             `json:"category"`
	CableType        *string             `json:"cable_type"`
	CableLength      *string             `json:"cable_length"` // display form, e.g. "2FT"
	CableLengthValue decimal.NullDecimal `json:"cable_length_value"`
	CableLengthUnit  *string             `json:"cable_length_unit"`
	Speed            *string             `json:"speed"`
	ConnectorType    *string             `json:"connector_type"`
	Location         *string             `json:"location"`   // last seen
	Datacenter       *string             `json:"datacenter"` // datacenter-of-record from the export, last seen
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// MergeCatalogEntry combines a stored entry with a freshly imported one and returns the
// entry to persist. existing may be nil for a first sighting.
//
// Name, group, location and datacenter always take the incoming value. Classification
// and derived cable attributes are coalesced: the incoming value wins only when present,
// so a known attribute never reverts to unknown.
func MergeCatalogEntry(existing, incoming *CatalogEntry, now time.Time) *CatalogEntry {
	if existing == nil {
		merged := *incoming
		merged.CreatedAt = now
		merged.UpdatedAt = now
		return &merged
	}

	return &CatalogEntry{
		MSF:              existing.MSF,
		ItemName:         incoming.ItemName,
		ItemGroup:        incoming.ItemGroup,
		Category:         coalesceString(incoming.Category, existing.Category),
		CableType:        coalesceString(incoming.CableType, existing.CableType),
		CableLength:      coalesceString(incoming.CableLength, existing.CableLength),
		CableLengthValue: coalesceDecimal(incoming.CableLengthValue, existing.CableLengthValue),
		CableLengthUnit:  coalesceString(incoming.CableLengthUnit, existing.CableLengthUnit),
		Speed:            coalesceString(incoming.Speed, existing.Speed),
		ConnectorType:    coalesceString(incoming.ConnectorType, existing.ConnectorType),
		Location:         incoming.Location,
		Datacenter:       incoming.Datacenter,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        now,
	}
}

func coalesceString(incoming, existing *string) *string {
	if incoming != nil && *incoming != "" {
		return incoming
	}
	return existing
}

// A zero length is treated as unknown, matching how a blank string is treated.
func coalesceDecimal(incoming, existing decimal.NullDecimal) decimal.NullDecimal {
	if incoming.Valid && !incoming.Decimal.IsZero() {
		return incoming
	}
	return existing
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
