package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
)

// CounterpartyReader defines read operations for counterparty data
type CounterpartyReader interface {
	// FindCounterpartyByID retrieves a counterparty by its unique identifier.
	FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)

	// FindCounterpartyByTaxID retrieves a counterparty by its bare tax id.
	FindCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error)

	// ListCounterparties retrieves a paginated list ordered by legal name.
	ListCounterparties(ctx context.Context, limit int, offset int) ([]domain.Counterparty, error)
}

// CounterpartyWriter defines write operations for counterparty data
type CounterpartyWriter interface {
	// SaveCounterparty persists a new counterparty.
	SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error

	// UpdateCounterparty updates an existing counterparty's details.
	UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error

	// DeactivateCounterparty marks a counterparty as inactive.
	DeactivateCounterparty(ctx context.Context, counterpartyID string, userID string, now time.Time) error
}

// CounterpartyRepositoryFacade combines the counterparty repository interfaces
type CounterpartyRepositoryFacade interface {
	CounterpartyReader
	CounterpartyWriter
}
