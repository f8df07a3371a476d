// Package tools provides the MCP tools exposing inventory reads.
package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// ScopeProvider attaches a database scope to a context.
// *database.ScopeProvider satisfies it.
type ScopeProvider interface {
	WithScope(ctx context.Context) (context.Context, func(), error)
}

// InventoryToolDeps contains dependencies for the inventory tools.
type InventoryToolDeps struct {
	Scopes    ScopeProvider
	Inventory services.InventoryService
	Imports   services.ImportService
	Logger    *zap.Logger
}

// acquireScope returns a scoped context for one tool call. The cleanup function
// releases the connection and must always be called.
func acquireScope(ctx context.Context, deps *InventoryToolDeps) (context.Context, func(), error) {
	scopedCtx, cleanup, err := deps.Scopes.WithScope(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return scopedCtx, cleanup, nil
}
