package domain

// AccountNature says which side of the balance normally increases the account.
type AccountNature string

const (
	NatureDebit  AccountNature = "DEBIT"
	NatureCredit AccountNature = "CREDIT"
)

// AccountKind is the top-level classification of a ledger account.
type AccountKind string

const (
	Asset     AccountKind = "ASSET"
	Liability AccountKind = "LIABILITY"
	Equity    AccountKind = "EQUITY"
	Revenue   AccountKind = "REVENUE"
	Expense   AccountKind = "EXPENSE"
	Cost      AccountKind = "COST"
)

// AccountLevel is the depth of an account inside the chart hierarchy.
// The code length determines the level: 1 digit is a class, 2 a group,
// 4 an account, 6 a subaccount and 8 an auxiliary. Only auxiliaries
// normally accept postings.
type AccountLevel int

const (
	LevelInvalid    AccountLevel = 0
	LevelClass      AccountLevel = 1
	LevelGroup      AccountLevel = 2
	LevelAccount    AccountLevel = 3
	LevelSubaccount AccountLevel = 4
	LevelAuxiliary  AccountLevel = 5
)

// Account is one node of the chart of accounts.
type Account struct {
	AccountID       string        `json:"accountID"` // Primary key (UUID)
	Code            string        `json:"code"`      // Digits only, unique
	Name            string        `json:"name"`
	Level           AccountLevel  `json:"level"`
	ParentAccountID string        `json:"parentAccountID"` // Empty only for level-1 classes
	Nature          AccountNature `json:"nature"`          // Must match the parent's nature
	Kind            AccountKind   `json:"kind"`
	AllowsPostings  bool          `json:"allowsPostings"` // True only for leaf accounts
	IsActive        bool          `json:"isActive"`
	Description     string        `json:"description"`
	AuditFields
}
