package dto

import (
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// Level and the parent linkage are derived from the code by the service.
type CreateAccountRequest struct {
	Code           string               `json:"code" validate:"required,numeric,min=1,max=8"`
	Name           string               `json:"name" validate:"required,min=3,max=200"`
	Nature         domain.AccountNature `json:"nature" validate:"required,oneof=DEBIT CREDIT"`
	Kind           domain.AccountKind   `json:"kind" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE COST"`
	AllowsPostings bool                 `json:"allowsPostings"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=3,max=200"`
	AllowsPostings *bool   `json:"allowsPostings"`
	IsActive       *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string               `json:"accountID"`
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	Level          domain.AccountLevel  `json:"level"`
	Nature         domain.AccountNature `json:"nature"`
	Kind           domain.AccountKind   `json:"kind"`
	AllowsPostings bool                 `json:"allowsPostings"`
	IsActive       bool                 `json:"isActive"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Code:           acc.Code,
		Name:           acc.Name,
		Level:          acc.Level,
		Nature:         acc.Nature,
		Kind:           acc.Kind,
		AllowsPostings: acc.AllowsPostings,
		IsActive:       acc.IsActive,
	}
}
