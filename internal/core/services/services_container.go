package services

import (
	"github.com/go-playground/validator/v10"

	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clock portssvc.Clock, notifier portssvc.Notifier) *portssvc.ServiceContainer {
	validate := validator.New(validator.WithRequiredStructEnabled())

	container := &portssvc.ServiceContainer{}

	// Audit goes first: the rule chain and every other service record
	// through it.
	container.Audit = NewAuditService(repos.AuditLogRepo, clock)

	recorder := container.Audit.(validation.AnomalyRecorder)
	chain := validation.NewChain(repos.AccountRepo, repos.PeriodRepo, repos.EntryRepo, repos.CounterpartyRepo, recorder)
	dryChain := validation.NewChain(repos.AccountRepo, repos.PeriodRepo, repos.EntryRepo, repos.CounterpartyRepo, nil)

	container.Account = NewAccountService(repos.AccountRepo, clock, validate)
	container.Counterparty = NewCounterpartyService(repos.CounterpartyRepo, clock, validate)
	container.Period = NewPeriodService(repos, container.Audit, dryChain, clock, validate, cfg.SequenceCounterName, cfg.EquityAccountCode)
	container.Entry = NewEntryService(
		repos,
		container.Period,
		container.Audit,
		chain,
		dryChain,
		clock,
		notifier,
		validate,
		cfg.SequenceCounterName,
		cfg.SequenceCounterLimit,
	)
	container.Integrity = NewIntegrityService(repos.EntryRepo, repos.PeriodRepo, container.Audit, notifier)

	return container
}
