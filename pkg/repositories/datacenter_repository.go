package repositories

import (
	"context"
	"fmt"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// DatacenterRepository provides data access for the datacenter registry.
type DatacenterRepository interface {
	List(ctx context.Context) ([]*models.Datacenter, error)
	// Upsert creates the datacenter or renames an existing one with the same ID.
	Upsert(ctx context.Context, dc *models.Datacenter) error
	UpdateName(ctx context.Context, id, name string) error
	// Delete removes the registry row and reports whether one existed.
	Delete(ctx context.Context, id string) (bool, error)
}

type datacenterRepository struct{}

// NewDatacenterRepository creates a new DatacenterRepository.
func NewDatacenterRepository() DatacenterRepository {
	return &datacenterRepository{}
}

var _ DatacenterRepository = (*datacenterRepository)(nil)

func (r *datacenterRepository) List(ctx context.Context) ([]*models.Datacenter, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT id, name, created_at FROM cbls_datacenters ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datacenters: %w", err)
	}
	defer rows.Close()

	datacenters := make([]*models.Datacenter, 0)
	for rows.Next() {
		var dc models.Datacenter
		if err := rows.Scan(&dc.ID, &dc.Name, &dc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan datacenter: %w", err)
		}
		datacenters = append(datacenters, &dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datacenters: %w", err)
	}

	return datacenters, nil
}

func (r *datacenterRepository) Upsert(ctx context.Context, dc *models.Datacenter) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		INSERT INTO cbls_datacenters (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at`

	if err := scope.Conn.QueryRow(ctx, query, dc.ID, dc.Name).Scan(&dc.CreatedAt); err != nil {
		return fmt.Errorf("failed to save datacenter: %w", err)
	}
	return nil
}

func (r *datacenterRepository) UpdateName(ctx context.Context, id, name string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	tag, err := scope.Conn.Exec(ctx, `UPDATE cbls_datacenters SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to update datacenter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *datacenterRepository) Delete(ctx context.Context, id string) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, apperrors.ErrNoScope
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM cbls_datacenters WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete datacenter: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
