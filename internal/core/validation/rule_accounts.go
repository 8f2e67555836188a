package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// AccountReader is the slice of the account repository the chain needs. Live
// state is re-read on every check; the chain caches nothing across calls.
type AccountReader interface {
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)
}

// accountsRule verifies that every referenced account exists, is active and
// accepts postings.
type accountsRule struct {
	accounts AccountReader
}

// NewAccountsRule builds the account existence/postability check.
func NewAccountsRule(accounts AccountReader) Rule {
	return accountsRule{accounts: accounts}
}

func (accountsRule) Name() string       { return "Accounts" }
func (accountsRule) Severity() Severity { return SeverityCritical }

func (r accountsRule) Check(ctx context.Context, entry domain.JournalEntry, _ Context) ([]Finding, error) {
	if len(entry.Lines) == 0 {
		return []Finding{r.finding("entry must have at least one line")}, nil
	}

	var findings []Finding
	for _, line := range entry.Lines {
		n := line.LineIndex

		if line.AccountCode == "" {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: account code is required", n)))
			continue
		}

		acct, err := r.accounts.FindAccountByCode(ctx, line.AccountCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				findings = append(findings, r.finding(fmt.Sprintf("line %d: account %s does not exist in the chart of accounts", n, line.AccountCode)))
				continue
			}
			return findings, fmt.Errorf("looking up account %s: %w", line.AccountCode, err)
		}

		if !acct.AllowsPostings {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: account %s - %s does not accept postings (aggregation account)", n, acct.Code, acct.Name)))
		}
		if !acct.IsActive {
			findings = append(findings, r.finding(fmt.Sprintf("line %d: account %s - %s is inactive", n, acct.Code, acct.Name)))
		}
	}

	return findings, nil
}

func (r accountsRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}
