package services

import (
	"context"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/dto"
)

// CounterpartySvcFacade manages the third-party registry entries may
// reference. The check digit is always computed, never trusted from input.
type CounterpartySvcFacade interface {
	// CreateCounterparty registers a counterparty, computing its check digit.
	CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, actor domain.Actor) (*domain.Counterparty, error)

	// GetCounterpartyByTaxID retrieves a counterparty by its bare tax id.
	GetCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error)

	// ListCounterparties retrieves a paginated list ordered by legal name.
	ListCounterparties(ctx context.Context, limit int, offset int) ([]domain.Counterparty, error)

	// DeactivateCounterparty marks a counterparty as inactive.
	DeactivateCounterparty(ctx context.Context, taxID string, actor domain.Actor) error
}
