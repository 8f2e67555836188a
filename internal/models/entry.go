package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the row model for the journal_entries table.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	Sequence      int64           `json:"sequence"`
	EntryDate     time.Time       `json:"entryDate"`
	Type          string          `json:"type"`
	SourceDocType string          `json:"sourceDocType"`
	SourceDocRef  string          `json:"sourceDocRef"`
	PartyTaxID    string          `json:"partyTaxID"`
	PartyName     string          `json:"partyName"`
	Description   string          `json:"description"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Difference    decimal.Decimal `json:"difference"`
	IntegrityHash string          `json:"integrityHash"`
	SourceIP      string          `json:"sourceIP"`
	UserAgent     string          `json:"userAgent"`
	Status        string          `json:"status"`
	VoidedAt      *time.Time      `json:"voidedAt"`
	VoidedBy      string          `json:"voidedBy"`
	VoidReason    string          `json:"voidReason"`
	PeriodID      string          `json:"periodID"`
	SealedAt      time.Time       `json:"sealedAt"`
	AuditFields
}

// EntryLine is the row model for the entry_lines table.
type EntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	LineIndex   int             `json:"lineIndex"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
	PartyTaxID  string          `json:"partyTaxID"`
	LineHash    string          `json:"lineHash"`
	AuditFields
}
