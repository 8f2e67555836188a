package models

// Counterparty is the row model for the counterparties table.
type Counterparty struct {
	CounterpartyID string `json:"counterpartyID"`
	TaxID          string `json:"taxID"`
	CheckDigit     string `json:"checkDigit"`
	LegalName      string `json:"legalName"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}
