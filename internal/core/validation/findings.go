// Package validation implements the ordered rule chain that every candidate
// journal entry passes through before persistence. All rules always run; the
// chain never short-circuits, so a rejected entry reports every problem at
// once.
package validation

import (
	"context"

	"github.com/openbooks/ledgercore/internal/core/domain"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityError    Severity = "ERROR"
	SeverityWarning  Severity = "WARNING"
)

// Mode distinguishes first-time creation from modification of an existing
// draft, which relaxes the sequence rule for the entry's own number.
type Mode string

const (
	ModeCreate Mode = "CREATE"
	ModeModify Mode = "MODIFY"
)

// Finding is one rule's verdict about a candidate entry.
type Finding struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Context carries the actor and request provenance through the chain. It is
// passed explicitly; the chain holds no per-request state.
type Context struct {
	Actor domain.Actor
	Meta  domain.RequestMeta
	Mode  Mode
	// EntryID identifies the entry being modified; empty on creation.
	EntryID string
}

// Rule is a single check over a candidate entry. Check may consult live
// repository state but must not mutate anything; the chain records anomalies.
type Rule interface {
	Name() string
	Severity() Severity
	Check(ctx context.Context, entry domain.JournalEntry, vc Context) ([]Finding, error)
}

// Result is the chain's consolidated output.
type Result struct {
	Findings []Finding `json:"findings"`
}

// Valid reports whether the entry may persist: no Critical or Error findings
// remain. Warnings are advisory and never block.
func (r Result) Valid() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical || f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Blocking returns only the findings that prevent persistence.
func (r Result) Blocking() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical || f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}
