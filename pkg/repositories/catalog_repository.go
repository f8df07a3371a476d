package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// CatalogRepository provides data access for cable catalog entries.
type CatalogRepository interface {
	// GetForUpdate reads an entry and row-locks it until the surrounding
	// transaction ends. Returns nil, nil when the MSF is unknown.
	GetForUpdate(ctx context.Context, msf string) (*models.CatalogEntry, error)
	GetByMSF(ctx context.Context, msf string) (*models.CatalogEntry, error)
	// Insert creates the entry. It reports false, without error, when another
	// writer inserted the same MSF first.
	Insert(ctx context.Context, entry *models.CatalogEntry) (bool, error)
	Update(ctx context.Context, entry *models.CatalogEntry) error
	UpdateCategory(ctx context.Context, msf, category string) error
	List(ctx context.Context) ([]*models.CatalogEntry, error)
}

type catalogRepository struct{}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{}
}

var _ CatalogRepository = (*catalogRepository)(nil)

const catalogColumns = `
	msf, item_name, item_group, category, cable_type, cable_length,
	cable_length_value, cable_length_unit, speed, connector_type,
	location, datacenter, created_at, updated_at`

func (r *catalogRepository) GetForUpdate(ctx context.Context, msf string) (*models.CatalogEntry, error) {
	return r.get(ctx, msf, true)
}

func (r *catalogRepository) GetByMSF(ctx context.Context, msf string) (*models.CatalogEntry, error) {
	return r.get(ctx, msf, false)
}

func (r *catalogRepository) get(ctx context.Context, msf string, forUpdate bool) (*models.CatalogEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `SELECT ` + catalogColumns + ` FROM cbls_catalog WHERE msf = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	entry, err := scanCatalogEntry(scope.Conn.QueryRow(ctx, query, msf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *catalogRepository) Insert(ctx context.Context, entry *models.CatalogEntry) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, apperrors.ErrNoScope
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}

	query := `
		INSERT INTO cbls_catalog (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (msf) DO NOTHING`

	tag, err := scope.Conn.Exec(ctx, query,
		entry.MSF,
		entry.ItemName,
		entry.ItemGroup,
		entry.Category,
		entry.CableType,
		entry.CableLength,
		entry.CableLengthValue,
		entry.CableLengthUnit,
		entry.Speed,
		entry.ConnectorType,
		entry.Location,
		entry.Datacenter,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert catalog entry %s: %w", entry.MSF, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *catalogRepository) Update(ctx context.Context, entry *models.CatalogEntry) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		UPDATE cbls_catalog
		SET item_name = $2, item_group = $3, category = $4, cable_type = $5,
		    cable_length = $6, cable_length_value = $7, cable_length_unit = $8,
		    speed = $9, connector_type = $10, location = $11, datacenter = $12,
		    updated_at = $13
		WHERE msf = $1`

	tag, err := scope.Conn.Exec(ctx, query,
		entry.MSF,
		entry.ItemName,
		entry.ItemGroup,
		entry.Category,
		entry.CableType,
		entry.CableLength,
		entry.CableLengthValue,
		entry.CableLengthUnit,
		entry.Speed,
		entry.ConnectorType,
		entry.Location,
		entry.Datacenter,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update catalog entry %s: %w", entry.MSF, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, msf, category string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE cbls_catalog SET category = $2, updated_at = now() WHERE msf = $1`,
		msf, category)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *catalogRepository) List(ctx context.Context) ([]*models.CatalogEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+catalogColumns+` FROM cbls_catalog ORDER BY msf`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []*models.CatalogEntry
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}

	return entries, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

// catalogScanTargets returns the Scan destinations for catalogColumns, in order.
func catalogScanTargets(e *models.CatalogEntry) []any {
	return []any{
		&e.MSF,
		&e.ItemName,
		&e.ItemGroup,
		&e.Category,
		&e.CableType,
		&e.CableLength,
		&e.CableLengthValue,
		&e.CableLengthUnit,
		&e.Speed,
		&e.ConnectorType,
		&e.Location,
		&e.Datacenter,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
}

func scanCatalogEntry(row pgx.Row) (*models.CatalogEntry, error) {
	var e models.CatalogEntry
	if err := row.Scan(catalogScanTargets(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	return &e, nil
}
