package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// importLockPrefix namespaces the advisory lock keys taken by imports.
const importLockPrefix = "cbls-import:"

// LedgerRepository provides access to the append-only quantity ledger.
//
// The current quantity for an MSF is the row with the greatest
// (import_timestamp, id), optionally restricted to one datacenter.
type LedgerRepository interface {
	// LockDatacenter takes a transaction-scoped advisory lock for the datacenter.
	// Concurrent imports into the same datacenter queue behind it.
	LockDatacenter(ctx context.Context, datacenter string) error
	// ResetDatacenter appends a zero-quantity row for every catalog entry, scoped to
	// the datacenter, and returns how many rows it wrote.
	ResetDatacenter(ctx context.Context, datacenter, sourceFile string, importID uuid.UUID) (int, error)
	Append(ctx context.Context, entry *models.LedgerEntry) error
	// LatestQuantity returns 0 when no matching row exists. A nil datacenter
	// considers rows from every datacenter and returns the single newest one.
	LatestQuantity(ctx context.Context, msf string, datacenter *string) (int, error)
	// History returns rows newest first. limit <= 0 means no limit.
	History(ctx context.Context, msf string, datacenter *string, limit int) ([]*models.LedgerEntry, error)
	DeleteByDatacenter(ctx context.Context, datacenter string) (int64, error)
}

type ledgerRepository struct{}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepository{}
}

var _ LedgerRepository = (*ledgerRepository)(nil)

func (r *ledgerRepository) LockDatacenter(ctx context.Context, datacenter string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	_, err := scope.Conn.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, importLockPrefix+datacenter)
	if err != nil {
		return fmt.Errorf("failed to lock datacenter %q: %w", datacenter, err)
	}
	return nil
}

func (r *ledgerRepository) ResetDatacenter(ctx context.Context, datacenter, sourceFile string, importID uuid.UUID) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	query := `
		INSERT INTO cbls_ledger (msf, datacenter, quantity, source_file, import_id)
		SELECT msf, $1, 0, $2, $3
		FROM cbls_catalog
		ORDER BY msf`

	tag, err := scope.Conn.Exec(ctx, query, datacenter, sourceFile, importID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset datacenter %q: %w", datacenter, err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *ledgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		INSERT INTO cbls_ledger (msf, datacenter, quantity, source_file, import_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, import_timestamp`

	err := scope.Conn.QueryRow(ctx, query,
		entry.MSF,
		entry.Datacenter,
		entry.Quantity,
		entry.SourceFile,
		entry.ImportID,
	).Scan(&entry.ID, &entry.ImportTimestamp)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry for %s: %w", entry.MSF, err)
	}
	return nil
}

func (r *ledgerRepository) LatestQuantity(ctx context.Context, msf string, datacenter *string) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	var (
		row      pgx.Row
		quantity int
	)
	if datacenter != nil {
		row = scope.Conn.QueryRow(ctx, `
			SELECT quantity FROM cbls_ledger
			WHERE msf = $1 AND datacenter = $2
			ORDER BY import_timestamp DESC, id DESC
			LIMIT 1`, msf, *datacenter)
	} else {
		row = scope.Conn.QueryRow(ctx, `
			SELECT quantity FROM cbls_ledger
			WHERE msf = $1
			ORDER BY import_timestamp DESC, id DESC
			LIMIT 1`, msf)
	}

	if err := row.Scan(&quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to resolve quantity for %s: %w", msf, err)
	}
	return quantity, nil
}

func (r *ledgerRepository) History(ctx context.Context, msf string, datacenter *string, limit int) ([]*models.LedgerEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, msf, datacenter, quantity, import_timestamp, source_file, import_id
		FROM cbls_ledger
		WHERE msf = $1 AND ($2::text IS NULL OR datacenter = $2)
		ORDER BY import_timestamp DESC, id DESC`
	args := []any{msf, datacenter}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger history: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.MSF, &e.Datacenter, &e.Quantity, &e.ImportTimestamp, &e.SourceFile, &e.ImportID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger history: %w", err)
	}

	return entries, nil
}

func (r *ledgerRepository) DeleteByDatacenter(ctx context.Context, datacenter string) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM cbls_ledger WHERE datacenter = $1`, datacenter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ledger rows for %q: %w", datacenter, err)
	}
	return tag.RowsAffected(), nil
}
