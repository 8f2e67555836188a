package services

import (
	"context"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting periods
type PeriodReaderSvc interface {
	// GetPeriod retrieves the period for a calendar year and month.
	GetPeriod(ctx context.Context, year int, month time.Month) (*domain.Period, error)

	// ListPeriods retrieves periods, newest first.
	ListPeriods(ctx context.Context, limit int, offset int) ([]domain.Period, error)

	// ComputeResult aggregates the period's revenue, cost and expense balances
	// without changing anything.
	ComputeResult(ctx context.Context, year int, month time.Month) (*domain.PeriodResult, error)
}

// PeriodWriterSvc defines lifecycle operations for accounting periods
type PeriodWriterSvc interface {
	// EnsurePeriod returns the period containing the date, creating an OPEN
	// one when none exists yet.
	EnsurePeriod(ctx context.Context, date time.Time, actor domain.Actor) (*domain.Period, error)

	// ClosePeriod runs the closing algorithm: computes the period result,
	// posts the closing entry that zeroes the result accounts into equity,
	// seals the period's entries under a Merkle root and flips the period to
	// CLOSED. Everything commits atomically or not at all.
	ClosePeriod(ctx context.Context, req dto.ClosePeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*dto.ClosePeriodResponse, error)

	// ReopenPeriod flips a CLOSED period back to OPEN. LOCKED periods cannot
	// be reopened.
	ReopenPeriod(ctx context.Context, req dto.ReopenPeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error)

	// LockPeriod makes a CLOSED period permanently immutable.
	LockPeriod(ctx context.Context, year int, month time.Month, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
