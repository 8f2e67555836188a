package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// SequenceReader exposes the persisted sequence state the rule checks against.
type SequenceReader interface {
	// MaxSequence returns the highest persisted sequence number, 0 when the
	// ledger is empty.
	MaxSequence(ctx context.Context) (int64, error)
	// FindEntryIDBySequence returns the id of the entry holding a sequence
	// number, or apperrors.ErrNotFound when the number is free.
	FindEntryIDBySequence(ctx context.Context, sequence int64) (string, error)
}

// sequenceRule enforces the contiguous numbering invariant: the first entry is
// 1, every later entry is max+1, and no number is ever reused. In modify mode
// the entry may keep its own number.
type sequenceRule struct {
	entries SequenceReader
}

// NewSequenceRule builds the consecutive numbering check.
func NewSequenceRule(entries SequenceReader) Rule {
	return sequenceRule{entries: entries}
}

func (sequenceRule) Name() string       { return "Sequence" }
func (sequenceRule) Severity() Severity { return SeverityCritical }

func (r sequenceRule) Check(ctx context.Context, entry domain.JournalEntry, vc Context) ([]Finding, error) {
	if entry.Sequence <= 0 {
		return []Finding{r.finding("sequence number is required and must be positive")}, nil
	}

	holderID, err := r.entries.FindEntryIDBySequence(ctx, entry.Sequence)
	switch {
	case err == nil:
		if vc.Mode == ModeModify && vc.EntryID != "" && holderID == vc.EntryID {
			// Modifying an entry keeps its own number.
			return nil, nil
		}
		return []Finding{r.finding(fmt.Sprintf("sequence number %d is already in use", entry.Sequence))}, nil
	case errors.Is(err, apperrors.ErrNotFound):
		// Number is free; fall through to the consecutiveness check.
	default:
		return nil, fmt.Errorf("checking sequence %d: %w", entry.Sequence, err)
	}

	maxSeq, err := r.entries.MaxSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading max sequence: %w", err)
	}

	if maxSeq == 0 {
		if entry.Sequence != 1 {
			return []Finding{r.finding(fmt.Sprintf("first entry must have sequence 1, got %d", entry.Sequence))}, nil
		}
		return nil, nil
	}

	if expected := maxSeq + 1; entry.Sequence != expected {
		return []Finding{r.finding(fmt.Sprintf("sequence must be %d (consecutive to %d), got %d", expected, maxSeq, entry.Sequence))}, nil
	}

	return nil, nil
}

func (r sequenceRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}
