package dto

import (
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLine defines one line of a candidate entry. Exactly one of
// debit or credit must be positive; the rule chain reports violations in
// full rather than failing fast, so the struct tags only gate the obvious.
type CreateEntryLine struct {
	AccountCode string          `json:"accountCode" validate:"required,numeric"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" validate:"required,min=5"`
	CostCenter  string          `json:"costCenter" validate:"omitempty,max=50"`
	PartyTaxID  string          `json:"partyTaxID" validate:"omitempty,max=20"`
}

// CreateEntryRequest defines the data needed to post a new journal entry.
type CreateEntryRequest struct {
	EntryDate     time.Time         `json:"entryDate" validate:"required"`
	Type          domain.EntryType  `json:"type" validate:"required,oneof=SALE PURCHASE ADJUSTMENT CLOSING OPENING PAYROLL MANUAL"`
	Description   string            `json:"description" validate:"required,min=10"`
	SourceDocType string            `json:"sourceDocType" validate:"omitempty,max=30"`
	SourceDocRef  string            `json:"sourceDocRef" validate:"omitempty,max=60"`
	PartyTaxID    string            `json:"partyTaxID" validate:"omitempty,max=20"`
	PartyName     string            `json:"partyName" validate:"omitempty,max=200"`
	AsDraft       bool              `json:"asDraft"`
	Lines         []CreateEntryLine `json:"lines" validate:"required,min=2,dive"`
}

// UpdateDraftEntryRequest replaces the content of a DRAFT entry.
type UpdateDraftEntryRequest struct {
	EntryDate   time.Time         `json:"entryDate" validate:"required"`
	Type        domain.EntryType  `json:"type" validate:"required,oneof=SALE PURCHASE ADJUSTMENT CLOSING OPENING PAYROLL MANUAL"`
	Description string            `json:"description" validate:"required,min=10"`
	PartyTaxID  string            `json:"partyTaxID" validate:"omitempty,max=20"`
	PartyName   string            `json:"partyName" validate:"omitempty,max=200"`
	Post        bool              `json:"post"`
	Lines       []CreateEntryLine `json:"lines" validate:"required,min=2,dive"`
}

// VoidEntryRequest records why an entry is being voided.
type VoidEntryRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	Limit         int  `json:"limit" validate:"omitempty,min=1,max=500"`
	Offset        int  `json:"offset" validate:"omitempty,min=0"`
	IncludeVoided bool `json:"includeVoided"`
}

// EntryLineResponse defines the data returned for one entry line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	LineIndex   int             `json:"lineIndex"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter,omitempty"`
	PartyTaxID  string          `json:"partyTaxID,omitempty"`
	LineHash    string          `json:"lineHash"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID       string              `json:"entryID"`
	Sequence      int64               `json:"sequence"`
	EntryDate     time.Time           `json:"entryDate"`
	Type          domain.EntryType    `json:"type"`
	Description   string              `json:"description"`
	Status        domain.EntryStatus  `json:"status"`
	TotalDebit    decimal.Decimal     `json:"totalDebit"`
	TotalCredit   decimal.Decimal     `json:"totalCredit"`
	IntegrityHash string              `json:"integrityHash"`
	PartyTaxID    string              `json:"partyTaxID,omitempty"`
	PartyName     string              `json:"partyName,omitempty"`
	VoidedReason  string              `json:"voidedReason,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	Lines         []EntryLineResponse `json:"lines"`
}

// ToEntryLineResponse converts a domain.EntryLine to EntryLineResponse DTO.
func ToEntryLineResponse(line *domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:      line.LineID,
		AccountCode: line.AccountCode,
		LineIndex:   line.LineIndex,
		Debit:       line.Debit,
		Credit:      line.Credit,
		Description: line.Description,
		CostCenter:  line.CostCenter,
		PartyTaxID:  line.PartyTaxID,
		LineHash:    line.LineHash,
	}
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i := range e.Lines {
		lines[i] = ToEntryLineResponse(&e.Lines[i])
	}
	return EntryResponse{
		EntryID:       e.EntryID,
		Sequence:      e.Sequence,
		EntryDate:     e.EntryDate,
		Type:          e.Type,
		Description:   e.Description,
		Status:        e.Status,
		TotalDebit:    e.TotalDebit,
		TotalCredit:   e.TotalCredit,
		IntegrityHash: e.IntegrityHash,
		PartyTaxID:    e.PartyTaxID,
		PartyName:     e.PartyName,
		VoidedReason:  e.VoidReason,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		Lines:         lines,
	}
}
