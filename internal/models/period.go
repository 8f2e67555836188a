package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the row model for the periods table.
type Period struct {
	PeriodID    string          `json:"periodID"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Status      string          `json:"status"`
	ClosedAt    *time.Time      `json:"closedAt"`
	ClosedBy    string          `json:"closedBy"`
	ClosingHash string          `json:"closingHash"`
	EntryCount  int             `json:"entryCount"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Notes       string          `json:"notes"`
	AuditFields
}
