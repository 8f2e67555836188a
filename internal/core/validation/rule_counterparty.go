package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// CounterpartyReader looks up registered counterparties by bare tax id.
type CounterpartyReader interface {
	FindCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error)
}

// counterpartyRule is advisory: a malformed tax id, an unknown counterparty or
// an inactive match all produce warnings, never blocks. Entries without a
// counterparty pass untouched.
type counterpartyRule struct {
	counterparties CounterpartyReader
}

// NewCounterpartyRule builds the advisory counterparty check.
func NewCounterpartyRule(counterparties CounterpartyReader) Rule {
	return counterpartyRule{counterparties: counterparties}
}

func (counterpartyRule) Name() string       { return "Counterparty" }
func (counterpartyRule) Severity() Severity { return SeverityWarning }

func (r counterpartyRule) Check(ctx context.Context, entry domain.JournalEntry, _ Context) ([]Finding, error) {
	if entry.PartyTaxID == "" {
		return nil, nil
	}

	clean := CleanTaxID(entry.PartyTaxID)
	if _, err := ComputeCheckDigit(clean); err != nil {
		return []Finding{r.finding(fmt.Sprintf("tax id %s has an invalid format: %v", MaskTaxID(clean), err))}, nil
	}

	party, err := r.counterparties.FindCounterpartyByTaxID(ctx, clean)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []Finding{r.finding(fmt.Sprintf("counterparty with tax id %s is not registered", MaskTaxID(clean)))}, nil
		}
		return nil, fmt.Errorf("looking up counterparty %s: %w", MaskTaxID(clean), err)
	}

	if !party.IsActive {
		return []Finding{r.finding(fmt.Sprintf("counterparty %s (%s) is inactive", party.LegalName, MaskTaxID(clean)))}, nil
	}

	return nil, nil
}

func (r counterpartyRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}
