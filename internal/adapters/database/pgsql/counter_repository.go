package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledgercore/internal/apperrors"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
)

type PgxCounterRepository struct {
	BaseRepository
}

// newPgxCounterRepository creates a repository over the ledger_counters table.
func newPgxCounterRepository(pool *pgxpool.Pool) portsrepo.CounterRepository {
	return &PgxCounterRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CounterRepository = (*PgxCounterRepository)(nil)

// NextSequence locks the counter row, increments it and returns the new value.
// The row lock serializes concurrent writers: the second caller blocks here
// until the first commits or rolls back, which is what makes assigned numbers
// strictly consecutive.
func (r *PgxCounterRepository) NextSequence(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var current, max int64
	err := tx.QueryRow(ctx,
		`SELECT current_value, max_value FROM ledger_counters WHERE name = $1 FOR UPDATE;`,
		name,
	).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: counter %s", apperrors.ErrNotFound, name)
		}
		return 0, fmt.Errorf("failed to lock counter %s: %w", name, err)
	}

	next := current + 1
	if max > 0 && next > max {
		return 0, fmt.Errorf("%w: counter %s reached %d", apperrors.ErrSequenceExhausted, name, max)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE ledger_counters SET current_value = $2, last_updated_at = NOW() WHERE name = $1;`,
		name, next,
	); err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}
	return next, nil
}

// CurrentSequence returns the counter's last assigned value without locking.
func (r *PgxCounterRepository) CurrentSequence(ctx context.Context, name string) (int64, error) {
	var current int64
	err := r.Pool.QueryRow(ctx, `SELECT current_value FROM ledger_counters WHERE name = $1;`, name).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: counter %s", apperrors.ErrNotFound, name)
		}
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return current, nil
}
