package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies the business event behind a journal entry.
type EntryType string

const (
	EntrySale       EntryType = "SALE"
	EntryPurchase   EntryType = "PURCHASE"
	EntryAdjustment EntryType = "ADJUSTMENT"
	EntryClosing    EntryType = "CLOSING"
	EntryOpening    EntryType = "OPENING"
	EntryPayroll    EntryType = "PAYROLL"
	EntryManual     EntryType = "MANUAL"
)

// EntryStatus is the lifecycle state of a journal entry.
// Entries move Draft -> Active -> Voided; Voided is terminal and entries are
// never physically deleted.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "DRAFT"
	EntryActive EntryStatus = "ACTIVE"
	EntryVoided EntryStatus = "VOIDED"
)

// BalanceTolerance is the maximum accepted absolute difference between the
// debit and credit totals of a balanced entry.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// JournalEntry is a balanced set of debit/credit postings representing one
// business event. Totals, difference and the integrity hash are always derived
// from the lines by the core; callers can never set them.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`  // Primary key (UUID)
	Sequence       int64           `json:"sequence"` // Globally unique, strictly consecutive from 1
	EntryDate      time.Time       `json:"entryDate"`
	Type           EntryType       `json:"type"`
	SourceDocType  string          `json:"sourceDocType"`   // FACTURA, RECEIPT, NOTE, ... optional
	SourceDocRef   string          `json:"sourceDocRef"`    // Optional origin document number
	PartyTaxID     string          `json:"partyTaxID"`      // Optional counterparty tax id
	PartyName      string          `json:"partyName"`       // Optional counterparty name
	Description    string          `json:"description"`     // At least 10 characters
	TotalDebit     decimal.Decimal `json:"totalDebit"`      // Derived from lines
	TotalCredit    decimal.Decimal `json:"totalCredit"`     // Derived from lines
	Difference     decimal.Decimal `json:"difference"`      // TotalDebit - TotalCredit
	IntegrityHash  string          `json:"integrityHash"`   // SHA-256 hex, derived
	SourceIP       string          `json:"sourceIP"`        // Creation provenance
	UserAgent      string          `json:"userAgent"`       //
	Status         EntryStatus     `json:"status"`          //
	VoidedAt       *time.Time      `json:"voidedAt"`        // Set only when voided
	VoidedBy       string          `json:"voidedBy"`        //
	VoidReason     string          `json:"voidReason"`      // At least 10 characters when voided
	PeriodID       string          `json:"periodID"`        // Owning period, may be empty
	SealedAt       time.Time       `json:"sealedAt"`        // Creation timestamp (non-repudiation)
	Lines          []EntryLine     `json:"lines,omitempty"` // Loaded with the aggregate
	AuditFields
}

// EntryLine is a single debit-or-credit posting within an entry. Exactly one of
// Debit/Credit is positive, never both and never neither.
type EntryLine struct {
	LineID      string          `json:"lineID"`  // Primary key (UUID)
	EntryID     string          `json:"entryID"` // Owning entry
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"` // Denormalized for hashing
	LineIndex   int             `json:"lineIndex"`   // Unique ordering index within the entry
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // At least 5 characters
	CostCenter  string          `json:"costCenter"`  // Optional
	PartyTaxID  string          `json:"partyTaxID"`  // Optional per-line counterparty override
	LineHash    string          `json:"lineHash"`    // SHA-256 hex, derived
	AuditFields
}

// IsBalanced reports whether the derived difference is inside tolerance.
func (e JournalEntry) IsBalanced() bool {
	return e.Difference.Abs().LessThanOrEqual(BalanceTolerance)
}

// CanModify reports whether the entry accepts mutations, with the blocking
// reason when it does not.
func (e JournalEntry) CanModify(period *Period) (bool, string) {
	if e.Status == EntryVoided {
		return false, "entry is voided"
	}
	if e.Type == EntryClosing {
		return false, "closing entries cannot be modified"
	}
	if period != nil && period.Status != PeriodOpen {
		return false, "owning period is " + string(period.Status)
	}
	return true, ""
}
