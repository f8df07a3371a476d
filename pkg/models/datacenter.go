package models

import "time"

// Datacenter is a named site that inventory imports can be scoped to. ID is the
// short code used as the ledger scope (e.g. "DC1"); Name is for display.
// Stored in cbls_datacenters table.
type Datacenter struct {
	ID        string    `json:"id" validate:"required,max=64"`
	Name      string    `json:"name" validate:"required,max=200"`
	CreatedAt time.Time `json:"created_at"`
}
