package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// PeriodReader resolves the accounting period owning a date.
type PeriodReader interface {
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.Period, error)
}

// periodRule rejects entries dated inside a closed or locked period. Dates
// with no resolvable period are allowed; the period is created on demand when
// the entry persists.
type periodRule struct {
	periods PeriodReader
}

// NewPeriodRule builds the period status check.
func NewPeriodRule(periods PeriodReader) Rule {
	return periodRule{periods: periods}
}

func (periodRule) Name() string       { return "PeriodStatus" }
func (periodRule) Severity() Severity { return SeverityCritical }

func (r periodRule) Check(ctx context.Context, entry domain.JournalEntry, _ Context) ([]Finding, error) {
	if entry.EntryDate.IsZero() {
		return []Finding{r.finding("accounting date is required")}, nil
	}

	period, err := r.periods.FindPeriodForDate(ctx, entry.EntryDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving period for %s: %w", entry.EntryDate.Format(time.DateOnly), err)
	}

	switch period.Status {
	case domain.PeriodClosed:
		return []Finding{r.finding(fmt.Sprintf(
			"period %s is CLOSED; entries dated %s cannot be created or modified",
			period.Label(), entry.EntryDate.Format(time.DateOnly)))}, nil
	case domain.PeriodLocked:
		return []Finding{r.finding(fmt.Sprintf(
			"period %s is LOCKED (under audit); entries dated %s cannot be created or modified",
			period.Label(), entry.EntryDate.Format(time.DateOnly)))}, nil
	}

	return nil, nil
}

func (r periodRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}
