package domain

// Counterparty is a registered third party (fiscal profile) an entry may
// reference. Matching during validation is advisory: an unknown counterparty
// is only a warning, never a block.
type Counterparty struct {
	CounterpartyID string `json:"counterpartyID"` // Primary key (UUID)
	TaxID          string `json:"taxID"`          // Digits only, without check digit
	CheckDigit     string `json:"checkDigit"`
	LegalName      string `json:"legalName"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}
