package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(pool),
		EntryRepo:        newPgxEntryRepository(pool),
		CounterRepo:      newPgxCounterRepository(pool),
		PeriodRepo:       newPgxPeriodRepository(pool),
		AuditLogRepo:     newPgxAuditLogRepository(pool),
		CounterpartyRepo: newPgxCounterpartyRepository(pool),
	}
}
