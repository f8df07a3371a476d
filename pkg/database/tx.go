package database

import (
	"context"
	"fmt"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
)

// Transactor runs a function inside a single database transaction.
// The context passed to fn carries a transaction-bound Scope, so repositories
// called with it join the transaction without knowing about it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxManager is the pgx-backed Transactor.
type TxManager struct{}

var _ Transactor = TxManager{}

// NewTxManager returns a Transactor that begins transactions on the context's Scope.
func NewTxManager() TxManager {
	return TxManager{}
}

// WithinTx commits when fn returns nil and rolls back on any error.
func (TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	scope, ok := GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if err := fn(SetScope(ctx, NewScope(tx))); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
