package dto

import (
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// CreateCounterpartyRequest defines the data needed to register a counterparty.
// The check digit is computed by the service, never supplied by the caller.
type CreateCounterpartyRequest struct {
	TaxID     string `json:"taxID" validate:"required,min=9,max=14"`
	LegalName string `json:"legalName" validate:"required,min=3,max=200"`
}

// CounterpartyResponse defines the data returned for a counterparty.
type CounterpartyResponse struct {
	CounterpartyID string `json:"counterpartyID"`
	TaxID          string `json:"taxID"`
	CheckDigit     string `json:"checkDigit"`
	LegalName      string `json:"legalName"`
	IsActive       bool   `json:"isActive"`
}

// ToCounterpartyResponse converts a domain.Counterparty to its DTO.
func ToCounterpartyResponse(cp *domain.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		CounterpartyID: cp.CounterpartyID,
		TaxID:          cp.TaxID,
		CheckDigit:     cp.CheckDigit,
		LegalName:      cp.LegalName,
		IsActive:       cp.IsActive,
	}
}
