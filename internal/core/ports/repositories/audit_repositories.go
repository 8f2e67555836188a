package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
)

// AuditLogFilter narrows audit queries. Zero values mean "any".
type AuditLogFilter struct {
	Kind     domain.AuditEventKind
	Severity domain.AuditSeverity
	ActorID  string
	EntryID  string
	PeriodID string
	From     time.Time
	To       time.Time
}

// AuditLogReader defines read operations for audit log data
type AuditLogReader interface {
	// FindAuditLogByID retrieves a single audit record.
	FindAuditLogByID(ctx context.Context, auditID string) (*domain.AuditLog, error)

	// ListAuditLogs retrieves a filtered, paginated list of audit records,
	// newest first.
	ListAuditLogs(ctx context.Context, filter AuditLogFilter, limit int, offset int) ([]domain.AuditLog, error)

	// CountAuditLogs returns the number of records matching the filter.
	CountAuditLogs(ctx context.Context, filter AuditLogFilter) (int64, error)
}

// AuditLogWriter defines the only write operation the audit trail supports.
// The interface deliberately has no update or delete methods: records are
// write-once, enforced again by database triggers.
type AuditLogWriter interface {
	// SaveAuditLog appends one immutable record to the trail.
	SaveAuditLog(ctx context.Context, log domain.AuditLog) error
}

// AuditLogRepositoryFacade combines the audit repository interfaces
type AuditLogRepositoryFacade interface {
	AuditLogReader
	AuditLogWriter
}
