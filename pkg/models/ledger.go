package models

import (
	"time"

	"github.com/google/uuid"
)

// ResetSuffix marks ledger rows written by the reset phase of a reconciliation pass.
const ResetSuffix = " (reset)"

// LedgerEntry is one immutable quantity snapshot for an MSF in a datacenter.
// Stored in cbls_ledger table. An empty Datacenter is its own scope.
type LedgerEntry struct {
	ID              int64     `json:"id"`
	MSF             string    `json:"msf"`
	Datacenter      string    `json:"datacenter"`
	Quantity        int       `json:"quantity"`
	ImportTimestamp time.Time `json:"import_date"`
	SourceFile      string    `json:"source_file"`
	ImportID        uuid.UUID `json:"import_id"` // reconciliation pass that wrote the row
}

// IsReset reports whether the row was written by a reset phase.
func (e *LedgerEntry) IsReset() bool {
	n := len(e.SourceFile) - len(ResetSuffix)
	return n >= 0 && e.SourceFile[n:] == ResetSuffix
}

// ImportRecord is the audit trail entry for one completed reconciliation pass.
// Stored in cbls_import_history table.
type ImportRecord struct {
	ID               int64     `json:"id"`
	ImportID         uuid.UUID `json:"import_id"`
	Filename         string    `json:"filename"`
	Datacenter       string    `json:"datacenter"`
	ImportDate       time.Time `json:"import_date"`
	RecordsProcessed int       `json:"records_processed"`
	NewProducts      int       `json:"new_products"`
	UpdatedProducts  int       `json:"updated_products"`
	ResetCount       int       `json:"reset_count"`
}

// ImportResult is the outcome of one import request. A soft failure (no usable rows)
// has Success=false and a message, and leaves storage untouched.
type ImportResult struct {
	Success          bool       `json:"success"`
	RecordsProcessed int        `json:"recordsProcessed"`
	NewProducts      int        `json:"newProducts"`
	UpdatedProducts  int        `json:"updatedProducts"`
	ResetCount       int        `json:"resetCount"`
	ImportID         *uuid.UUID `json:"importId,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// ErasureResult reports how many rows a full erasure removed.
type ErasureResult struct {
	ProductsDeleted  int64 `json:"productsDeleted"`
	InventoryDeleted int64 `json:"inventoryDeleted"`
	ImportsDeleted   int64 `json:"importsDeleted"`
}
