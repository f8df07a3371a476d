package repositories

import (
	"context"
	"fmt"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// ImportRepository provides access to the import audit trail.
type ImportRepository interface {
	Create(ctx context.Context, record *models.ImportRecord) error
	// List returns the most recent imports first.
	List(ctx context.Context, limit int) ([]*models.ImportRecord, error)
}

type importRepository struct{}

// NewImportRepository creates a new ImportRepository.
func NewImportRepository() ImportRepository {
	return &importRepository{}
}

var _ ImportRepository = (*importRepository)(nil)

func (r *importRepository) Create(ctx context.Context, record *models.ImportRecord) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		INSERT INTO cbls_import_history (
			import_id, filename, datacenter, records_processed,
			new_products, updated_products, reset_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, import_date`

	err := scope.Conn.QueryRow(ctx, query,
		record.ImportID,
		record.Filename,
		record.Datacenter,
		record.RecordsProcessed,
		record.NewProducts,
		record.UpdatedProducts,
		record.ResetCount,
	).Scan(&record.ID, &record.ImportDate)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

func (r *importRepository) List(ctx context.Context, limit int) ([]*models.ImportRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, import_id, filename, datacenter, import_date,
		       records_processed, new_products, updated_products, reset_count
		FROM cbls_import_history
		ORDER BY import_date DESC, id DESC
		LIMIT $1`

	rows, err := scope.Conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import history: %w", err)
	}
	defer rows.Close()

	var records []*models.ImportRecord
	for rows.Next() {
		var rec models.ImportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ImportID,
			&rec.Filename,
			&rec.Datacenter,
			&rec.ImportDate,
			&rec.RecordsProcessed,
			&rec.NewProducts,
			&rec.UpdatedProducts,
			&rec.ResetCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import history: %w", err)
	}

	return records, nil
}
