package models

// Account is the row model for the accounts table.
type Account struct {
	AccountID       string `json:"accountID"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Level           int    `json:"level"`
	ParentAccountID string `json:"parentAccountID"`
	Nature          string `json:"nature"`
	Kind            string `json:"kind"`
	AllowsPostings  bool   `json:"allowsPostings"`
	IsActive        bool   `json:"isActive"`
	Description     string `json:"description"`
	AuditFields
}
