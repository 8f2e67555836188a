package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/models"
	"github.com/openbooks/ledgercore/internal/utils/mapping"
)

const periodColumns = `period_id, year, month, start_date, end_date, status,
	closed_at, COALESCE(closed_by, ''), COALESCE(closing_hash, ''), entry_count,
	total_debit, total_credit, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryWithTx {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryWithTx = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var m models.Period
	err := row.Scan(
		&m.PeriodID, &m.Year, &m.Month, &m.StartDate, &m.EndDate, &m.Status,
		&m.ClosedAt, &m.ClosedBy, &m.ClosingHash, &m.EntryCount,
		&m.TotalDebit, &m.TotalCredit, &m.Notes,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan period: %w", err)
	}
	p := mapping.ToDomainPeriod(m)
	return &p, nil
}

// SavePeriod persists a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	m := mapping.ToModelPeriod(period)
	query := `
		INSERT INTO periods (period_id, year, month, start_date, end_date, status,
			closed_at, closed_by, closing_hash, entry_count, total_debit, total_credit, notes,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PeriodID, m.Year, m.Month, m.StartDate, m.EndDate, m.Status,
		m.ClosedAt, m.ClosedBy, m.ClosingHash, m.EntryCount, m.TotalDebit, m.TotalCredit, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: period %04d-%02d", apperrors.ErrDuplicate, period.Year, int(period.Month))
		}
		return fmt.Errorf("failed to insert period %04d-%02d: %w", period.Year, int(period.Month), err)
	}
	return nil
}

// FindPeriodByID retrieves a specific period by its unique identifier.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	query := fmt.Sprintf(`SELECT %s FROM periods WHERE period_id = $1;`, periodColumns)
	return scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
}

// FindPeriodByMonth retrieves the period for a calendar year and month.
func (r *PgxPeriodRepository) FindPeriodByMonth(ctx context.Context, year int, month time.Month) (*domain.Period, error) {
	query := fmt.Sprintf(`SELECT %s FROM periods WHERE year = $1 AND month = $2;`, periodColumns)
	return scanPeriod(r.Pool.QueryRow(ctx, query, year, int(month)))
}

// FindPeriodForDate retrieves the period whose date range contains the date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	query := fmt.Sprintf(`SELECT %s FROM periods WHERE $1 BETWEEN start_date AND end_date;`, periodColumns)
	return scanPeriod(r.Pool.QueryRow(ctx, query, date))
}

// ListPeriods retrieves periods ordered by year and month descending.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, limit int, offset int) ([]domain.Period, error) {
	query := fmt.Sprintf(`SELECT %s FROM periods ORDER BY year DESC, month DESC LIMIT $1 OFFSET $2;`, periodColumns)
	return r.queryPeriods(ctx, query, limit, offset)
}

// ListOpenPeriods retrieves every period currently in OPEN status.
func (r *PgxPeriodRepository) ListOpenPeriods(ctx context.Context) ([]domain.Period, error) {
	query := fmt.Sprintf(`SELECT %s FROM periods WHERE status = 'OPEN' ORDER BY year, month;`, periodColumns)
	return r.queryPeriods(ctx, query)
}

func (r *PgxPeriodRepository) queryPeriods(ctx context.Context, query string, args ...any) ([]domain.Period, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

const periodUpdateQuery = `
	UPDATE periods
	SET status = $2, closed_at = $3, closed_by = NULLIF($4, ''), closing_hash = NULLIF($5, ''),
		entry_count = $6, total_debit = $7, total_credit = $8, notes = $9,
		last_updated_at = $10, last_updated_by = $11
	WHERE period_id = $1;
`

// UpdatePeriod updates a period's status, statistics and closing metadata.
func (r *PgxPeriodRepository) UpdatePeriod(ctx context.Context, period domain.Period) error {
	m := mapping.ToModelPeriod(period)
	tag, err := r.Pool.Exec(ctx, periodUpdateQuery,
		m.PeriodID, m.Status, m.ClosedAt, m.ClosedBy, m.ClosingHash,
		m.EntryCount, m.TotalDebit, m.TotalCredit, m.Notes,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update period %s: %w", period.PeriodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePeriodInTx applies the same update within an existing transaction.
func (r *PgxPeriodRepository) UpdatePeriodInTx(ctx context.Context, tx pgx.Tx, period domain.Period) error {
	m := mapping.ToModelPeriod(period)
	tag, err := tx.Exec(ctx, periodUpdateQuery,
		m.PeriodID, m.Status, m.ClosedAt, m.ClosedBy, m.ClosingHash,
		m.EntryCount, m.TotalDebit, m.TotalCredit, m.Notes,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update period %s: %w", period.PeriodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
