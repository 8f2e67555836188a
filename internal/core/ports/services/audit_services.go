package services

import (
	"context"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/core/validation"
)

// AuditRecorderSvc appends records to the write-once audit trail.
type AuditRecorderSvc interface {
	// Record appends one audit record, filling id and timestamp.
	Record(ctx context.Context, log domain.AuditLog) error

	// RecordAnomaly writes the audit record for a rejected entry candidate.
	// Implements validation.AnomalyRecorder.
	RecordAnomaly(ctx context.Context, entry domain.JournalEntry, vc validation.Context, findings []validation.Finding) error
}

// AuditReaderSvc defines read operations over the audit trail.
type AuditReaderSvc interface {
	// ListAuditLogs retrieves a filtered, paginated slice of the trail.
	// Requires the audit view permission.
	ListAuditLogs(ctx context.Context, filter repositories.AuditLogFilter, limit int, offset int, actor domain.Actor) ([]domain.AuditLog, error)
}

// AuditSvcFacade combines the audit service interfaces
type AuditSvcFacade interface {
	AuditRecorderSvc
	AuditReaderSvc
}
