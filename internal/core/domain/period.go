package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of an accounting period.
// Closed periods can be reopened with an audited justification; Locked
// periods are administratively frozen (audit in progress) and cannot.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// Period is a calendar-month accounting window. Entries mutate only while the
// period is open; closing seals it with a Merkle root over its entry hashes.
type Period struct {
	PeriodID    string          `json:"periodID"` // Primary key (UUID)
	Year        int             `json:"year"`
	Month       time.Month      `json:"month"` // Unique together with Year
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Status      PeriodStatus    `json:"status"`
	ClosedAt    *time.Time      `json:"closedAt"`
	ClosedBy    string          `json:"closedBy"`
	ClosingHash string          `json:"closingHash"` // Merkle root over active entry hashes
	EntryCount  int             `json:"entryCount"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Notes       string          `json:"notes"`
	AuditFields
}

// PeriodResult is the profit-and-loss outcome computed during closing.
type PeriodResult struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Expense     decimal.Decimal `json:"expense"`
	GrossProfit decimal.Decimal `json:"grossProfit"` // Revenue - Cost
	NetProfit   decimal.Decimal `json:"netProfit"`   // GrossProfit - Expense
}

// Label renders the period as "2026-03" for logs and audit payloads.
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Contains reports whether the given accounting date falls inside the window.
func (p Period) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
