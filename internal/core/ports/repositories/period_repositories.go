package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// PeriodReader defines read operations for accounting period data
type PeriodReader interface {
	// FindPeriodByID retrieves a specific period by its unique identifier.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error)

	// FindPeriodByMonth retrieves the period for a calendar year and month.
	FindPeriodByMonth(ctx context.Context, year int, month time.Month) (*domain.Period, error)

	// FindPeriodForDate retrieves the period whose date range contains the date.
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.Period, error)

	// ListPeriods retrieves periods ordered by year and month descending.
	ListPeriods(ctx context.Context, limit int, offset int) ([]domain.Period, error)

	// ListOpenPeriods retrieves every period currently in OPEN status.
	ListOpenPeriods(ctx context.Context) ([]domain.Period, error)
}

// PeriodWriter defines write operations for accounting period data
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.Period) error

	// UpdatePeriod updates a period's status, statistics and closing metadata.
	UpdatePeriod(ctx context.Context, period domain.Period) error

	// UpdatePeriodInTx updates a period within an existing transaction, so the
	// closing entry and the status flip commit atomically.
	UpdatePeriodInTx(ctx context.Context, tx pgx.Tx, period domain.Period) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}

// PeriodRepositoryWithTx extends PeriodRepositoryFacade with transaction capabilities
type PeriodRepositoryWithTx interface {
	PeriodRepositoryFacade
	TransactionManager
}
