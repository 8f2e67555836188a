package validation

import (
	"context"
	"fmt"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// balanceRule enforces the double-entry equation: the debit and credit sums
// over the lines must agree within tolerance, and the entry totals must match
// the line sums.
type balanceRule struct{}

// NewBalanceRule builds the balance check.
func NewBalanceRule() Rule { return balanceRule{} }

func (balanceRule) Name() string       { return "Balance" }
func (balanceRule) Severity() Severity { return SeverityCritical }

func (r balanceRule) Check(_ context.Context, entry domain.JournalEntry, _ Context) ([]Finding, error) {
	if len(entry.Lines) == 0 {
		return []Finding{r.finding("entry must have at least one line")}, nil
	}

	lineDebits := decimal.Zero
	lineCredits := decimal.Zero
	for _, line := range entry.Lines {
		lineDebits = lineDebits.Add(line.Debit)
		lineCredits = lineCredits.Add(line.Credit)
	}

	var findings []Finding

	if diff := lineDebits.Sub(lineCredits).Abs(); diff.GreaterThan(domain.BalanceTolerance) {
		findings = append(findings, r.finding(fmt.Sprintf(
			"entry is out of balance: debits=%s credits=%s difference=%s (tolerance %s)",
			lineDebits.StringFixed(2), lineCredits.StringFixed(2), diff.StringFixed(2), domain.BalanceTolerance.StringFixed(2))))
	}

	if diff := entry.TotalDebit.Sub(lineDebits).Abs(); diff.GreaterThan(domain.BalanceTolerance) {
		findings = append(findings, r.finding(fmt.Sprintf(
			"entry debit total %s does not match line sum %s",
			entry.TotalDebit.StringFixed(2), lineDebits.StringFixed(2))))
	}
	if diff := entry.TotalCredit.Sub(lineCredits).Abs(); diff.GreaterThan(domain.BalanceTolerance) {
		findings = append(findings, r.finding(fmt.Sprintf(
			"entry credit total %s does not match line sum %s",
			entry.TotalCredit.StringFixed(2), lineCredits.StringFixed(2))))
	}

	return findings, nil
}

func (r balanceRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}
