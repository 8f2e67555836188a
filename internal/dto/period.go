package dto

import (
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClosePeriodRequest defines the data needed to close an accounting period.
type ClosePeriodRequest struct {
	Year  int        `json:"year" validate:"required,min=2000,max=2100"`
	Month time.Month `json:"month" validate:"required,min=1,max=12"`
	Notes string     `json:"notes" validate:"omitempty,max=500"`
}

// ClosePeriodResponse reports the outcome of a period close: the sealed
// period, the generated closing entry and the computed result.
type ClosePeriodResponse struct {
	Period       domain.Period       `json:"period"`
	ClosingEntry domain.JournalEntry `json:"closingEntry"`
	Result       domain.PeriodResult `json:"result"`
	MerkleRoot   string              `json:"merkleRoot"`
}

// ReopenPeriodRequest defines the data needed to reopen a closed period.
// Reopening is an exceptional act, so the justification is mandatory and
// substantial.
type ReopenPeriodRequest struct {
	Year          int        `json:"year" validate:"required,min=2000,max=2100"`
	Month         time.Month `json:"month" validate:"required,min=1,max=12"`
	Justification string     `json:"justification" validate:"required,min=20"`
}

// PeriodResponse defines the data returned for a period.
type PeriodResponse struct {
	PeriodID    string              `json:"periodID"`
	Label       string              `json:"label"`
	Status      domain.PeriodStatus `json:"status"`
	StartDate   time.Time           `json:"startDate"`
	EndDate     time.Time           `json:"endDate"`
	EntryCount  int                 `json:"entryCount"`
	TotalDebit  decimal.Decimal     `json:"totalDebit"`
	TotalCredit decimal.Decimal     `json:"totalCredit"`
	ClosedAt    *time.Time          `json:"closedAt,omitempty"`
	ClosedBy    string              `json:"closedBy,omitempty"`
	ClosingHash string              `json:"closingHash,omitempty"`
}

// ToPeriodResponse converts a domain.Period to PeriodResponse DTO.
func ToPeriodResponse(p *domain.Period) PeriodResponse {
	return PeriodResponse{
		PeriodID:    p.PeriodID,
		Label:       p.Label(),
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		EntryCount:  p.EntryCount,
		TotalDebit:  p.TotalDebit,
		TotalCredit: p.TotalCredit,
		ClosedAt:    p.ClosedAt,
		ClosedBy:    p.ClosedBy,
		ClosingHash: p.ClosingHash,
	}
}
