package validation

import (
	"context"
	"fmt"
	"slices"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// roleLimitsRule checks the actor's posting envelope: each role has an allowed
// set of entry types and a maximum single-entry amount, and violating either
// axis rejects the entry.
type roleLimitsRule struct{}

// NewRoleLimitsRule builds the per-role limits check.
func NewRoleLimitsRule() Rule { return roleLimitsRule{} }

func (roleLimitsRule) Name() string       { return "RoleLimits" }
func (roleLimitsRule) Severity() Severity { return SeverityError }

func (r roleLimitsRule) Check(_ context.Context, entry domain.JournalEntry, vc Context) ([]Finding, error) {
	role := vc.Actor.ResolveRole()
	limit := domain.LimitForRole(role)

	var findings []Finding

	if limit.AllowedTypes != nil && !slices.Contains(limit.AllowedTypes, entry.Type) {
		findings = append(findings, r.finding(fmt.Sprintf(
			"role %s cannot post entries of type %s", role, entry.Type)))
	}

	if limit.MaxAmount != nil {
		amount := decimalMax(entry.TotalDebit, entry.TotalCredit)
		if amount.GreaterThan(*limit.MaxAmount) {
			findings = append(findings, r.finding(fmt.Sprintf(
				"role %s cannot post entries above %s; entry amount is %s",
				role, limit.MaxAmount.StringFixed(2), amount.StringFixed(2))))
		}
	}

	return findings, nil
}

func (r roleLimitsRule) finding(msg string) Finding {
	return Finding{Rule: r.Name(), Message: msg, Severity: r.Severity()}
}

func decimalMax(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
