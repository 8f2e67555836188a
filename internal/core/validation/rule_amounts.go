package validation

import (
	"context"
	"fmt"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// amountsRule verifies the basic shape of every line amount: non-negative,
// at most two fraction digits, exactly one of debit/credit positive, and at
// least one line with real activity.
type amountsRule struct{}

// NewAmountsRule builds the first rule of the chain.
func NewAmountsRule() Rule { return amountsRule{} }

func (amountsRule) Name() string       { return "Amounts" }
func (amountsRule) Severity() Severity { return SeverityCritical }

func (r amountsRule) Check(_ context.Context, entry domain.JournalEntry, _ Context) ([]Finding, error) {
	if len(entry.Lines) == 0 {
		return []Finding{r.finding("entry must have at least one line")}, nil
	}

	var findings []Finding
	hasActivity := false

	for _, line := range entry.Lines {
		n := line.LineIndex

		if line.Debit.IsNegative() {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: debit cannot be negative (%s)", n, line.Debit)))
		}
		if line.Credit.IsNegative() {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: credit cannot be negative (%s)", n, line.Credit)))
		}

		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet && creditSet {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: cannot carry both debit (%s) and credit (%s)", n, line.Debit, line.Credit)))
		}
		if !debitSet && !creditSet {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: must carry a debit or a credit greater than zero", n)))
		}
		if debitSet || creditSet {
			hasActivity = true
		}

		if tooManyFractionDigits(line.Debit) {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: debit %s has more than 2 fraction digits", n, line.Debit)))
		}
		if tooManyFractionDigits(line.Credit) {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: credit %s has more than 2 fraction digits", n, line.Credit)))
		}
	}

	if !hasActivity {
		findings = append(findings, r.finding("entry must have at least one line with a nonzero amount"))
	}

	return findings, nil
}

func (r amountsRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}

func tooManyFractionDigits(d decimal.Decimal) bool {
	return !d.Equal(d.Round(2))
}
