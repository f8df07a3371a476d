package repositories

import (
	"context"
	"fmt"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// ErasureRepository removes all inventory data. Datacenters, MSF configs and
// settings survive.
type ErasureRepository interface {
	DeleteAll(ctx context.Context) (*models.ErasureResult, error)
}

type erasureRepository struct{}

// NewErasureRepository creates a new ErasureRepository.
func NewErasureRepository() ErasureRepository {
	return &erasureRepository{}
}

var _ ErasureRepository = (*erasureRepository)(nil)

// DeleteAll must run inside a transaction so the three deletes land together.
func (r *erasureRepository) DeleteAll(ctx context.Context) (*models.ErasureResult, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	result := &models.ErasureResult{}

	// Ledger rows reference the catalog, so they go first.
	tag, err := scope.Conn.Exec(ctx, `DELETE FROM cbls_ledger`)
	if err != nil {
		return nil, fmt.Errorf("failed to delete ledger: %w", err)
	}
	result.InventoryDeleted = tag.RowsAffected()

	tag, err = scope.Conn.Exec(ctx, `DELETE FROM cbls_import_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to delete import history: %w", err)
	}
	result.ImportsDeleted = tag.RowsAffected()

	tag, err = scope.Conn.Exec(ctx, `DELETE FROM cbls_catalog`)
	if err != nil {
		return nil, fmt.Errorf("failed to delete catalog: %w", err)
	}
	result.ProductsDeleted = tag.RowsAffected()

	return result, nil
}
