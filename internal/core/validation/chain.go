package validation

import (
	"context"
	"fmt"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// AnomalyRecorder receives the audit record for blocked candidates. The chain
// fires it once per failed validation and never lets a recorder failure alter
// the validation result.
type AnomalyRecorder interface {
	RecordAnomaly(ctx context.Context, entry domain.JournalEntry, vc Context, findings []Finding) error
}

// blockingAuditRules are the rules whose Critical/Error findings trigger an
// anomaly audit record (the structural invariants; role and counterparty
// findings are reported to the caller only).
var blockingAuditRules = map[string]bool{
	"Amounts":      true,
	"Balance":      true,
	"Accounts":     true,
	"PeriodStatus": true,
	"Sequence":     true,
}

// Chain runs a fixed, ordered list of rules over one candidate entry. Every
// rule always runs: regulators require an exhaustive report, not the first
// failure. Validation is stateless across calls; each rule re-reads live
// account/period/sequence state per invocation.
type Chain struct {
	rules    []Rule
	recorder AnomalyRecorder
}

// NewChain assembles the standard seven-rule chain in its fixed order.
func NewChain(accounts AccountReader, periods PeriodReader, entries SequenceReader, counterparties CounterpartyReader, recorder AnomalyRecorder) *Chain {
	return &Chain{
		rules: []Rule{
			NewAmountsRule(),
			NewBalanceRule(),
			NewAccountsRule(accounts),
			NewPeriodRule(periods),
			NewSequenceRule(entries),
			NewRoleLimitsRule(),
			NewCounterpartyRule(counterparties),
		},
		recorder: recorder,
	}
}

// Rules exposes the configured rule list, mainly for tests and reporting.
func (c *Chain) Rules() []Rule { return c.rules }

// Validate runs the whole chain and returns the consolidated findings. A rule
// that errors or panics internally contributes a single Error finding for
// itself; it never suppresses the other rules.
func (c *Chain) Validate(ctx context.Context, entry domain.JournalEntry, vc Context) Result {
	logger := logging.FromContext(ctx)

	var findings []Finding
	for _, rule := range c.rules {
		findings = append(findings, runRule(ctx, rule, entry, vc)...)
	}

	result := Result{Findings: findings}

	if !result.Valid() && c.recorder != nil {
		blocking := make([]Finding, 0, len(findings))
		for _, f := range result.Blocking() {
			if blockingAuditRules[f.Rule] {
				blocking = append(blocking, f)
			}
		}
		if len(blocking) > 0 {
			if err := c.recorder.RecordAnomaly(ctx, entry, vc, blocking); err != nil {
				// Audit failure never changes the validation outcome.
				logger.Error("failed to record validation anomaly",
					"sequence", entry.Sequence, "error", err)
			}
		}
	}

	return result
}

// runRule executes one rule, converting internal errors and panics into a
// typed failure attributed to that rule alone.
func runRule(ctx context.Context, rule Rule, entry domain.JournalEntry, vc Context) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = append(findings, Finding{
				Rule:     rule.Name(),
				Message:  fmt.Sprintf("rule panicked: %v", r),
				Severity: SeverityError,
			})
		}
	}()

	out, err := rule.Check(ctx, entry, vc)
	if err != nil {
		out = append(out, Finding{
			Rule:     rule.Name(),
			Message:  fmt.Sprintf("rule execution failed: %v", err),
			Severity: SeverityError,
		})
	}
	return out
}
