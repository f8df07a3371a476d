package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// MsfConfigRepository provides data access for per-MSF display overrides.
type MsfConfigRepository interface {
	List(ctx context.Context) ([]*models.MsfConfig, error)
	// Get returns nil, nil when no config exists for the MSF.
	Get(ctx context.Context, msf string) (*models.MsfConfig, error)
	Upsert(ctx context.Context, cfg *models.MsfConfig) error
	Delete(ctx context.Context, msf string) error
}

type msfConfigRepository struct{}

// NewMsfConfigRepository creates a new MsfConfigRepository.
func NewMsfConfigRepository() MsfConfigRepository {
	return &msfConfigRepository{}
}

var _ MsfConfigRepository = (*msfConfigRepository)(nil)

const msfConfigColumns = `msf, short_name, category_override, notes, hidden, custom_order, created_at, updated_at`

func (r *msfConfigRepository) List(ctx context.Context) ([]*models.MsfConfig, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+msfConfigColumns+` FROM cbls_msf_config ORDER BY msf`)
	if err != nil {
		return nil, fmt.Errorf("failed to query msf configs: %w", err)
	}
	defer rows.Close()

	configs := make([]*models.MsfConfig, 0)
	for rows.Next() {
		cfg, err := scanMsfConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating msf configs: %w", err)
	}

	return configs, nil
}

func (r *msfConfigRepository) Get(ctx context.Context, msf string) (*models.MsfConfig, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	cfg, err := scanMsfConfig(scope.Conn.QueryRow(ctx,
		`SELECT `+msfConfigColumns+` FROM cbls_msf_config WHERE msf = $1`, msf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (r *msfConfigRepository) Upsert(ctx context.Context, cfg *models.MsfConfig) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		INSERT INTO cbls_msf_config (msf, short_name, category_override, notes, hidden, custom_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (msf) DO UPDATE SET
			short_name = EXCLUDED.short_name,
			category_override = EXCLUDED.category_override,
			notes = EXCLUDED.notes,
			hidden = EXCLUDED.hidden,
			custom_order = EXCLUDED.custom_order,
			updated_at = now()
		RETURNING created_at, updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		cfg.MSF,
		cfg.ShortName,
		cfg.CategoryOverride,
		cfg.Notes,
		cfg.Hidden,
		cfg.CustomOrder,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save msf config: %w", err)
	}
	return nil
}

func (r *msfConfigRepository) Delete(ctx context.Context, msf string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM cbls_msf_config WHERE msf = $1`, msf)
	if err != nil {
		return fmt.Errorf("failed to delete msf config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanMsfConfig(row pgx.Row) (*models.MsfConfig, error) {
	var c models.MsfConfig
	err := row.Scan(&c.MSF, &c.ShortName, &c.CategoryOverride, &c.Notes, &c.Hidden, &c.CustomOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan msf config: %w", err)
	}
	return &c, nil
}
