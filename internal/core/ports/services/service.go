package services

import (
	"context"
	"time"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality.
type ServiceContainer struct {
	Account      AccountSvcFacade
	Entry        EntrySvcFacade
	Period       PeriodSvcFacade
	Audit        AuditSvcFacade
	Integrity    IntegritySvc
	Counterparty CounterpartySvcFacade
}

// Clock abstracts time for services, so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// Notifier receives operational alerts that someone should look at: hash
// mismatches found by verification sweeps and the sequence counter nearing
// exhaustion. Implementations must not block the caller.
type Notifier interface {
	// NotifyIntegrityBreach reports that stored hashes no longer match
	// recomputed ones for the given period label.
	NotifyIntegrityBreach(ctx context.Context, periodLabel string, affectedEntries int) error

	// NotifySequenceNearingLimit reports counter usage at or above the
	// warning threshold, as a percentage of the configured ceiling.
	NotifySequenceNearingLimit(ctx context.Context, counterName string, current int64, limit int64) error
}
