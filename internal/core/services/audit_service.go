package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// auditService appends to and reads from the write-once audit trail.
type auditService struct {
	auditRepo portsrepo.AuditLogRepositoryFacade
	clock     portssvc.Clock
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditLogRepositoryFacade, clock portssvc.Clock) portssvc.AuditSvcFacade {
	return &auditService{
		auditRepo: auditRepo,
		clock:     clock,
	}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)
var _ validation.AnomalyRecorder = (*auditService)(nil)

// Record appends one audit record, assigning its id and timestamp.
func (s *auditService) Record(ctx context.Context, log domain.AuditLog) error {
	if log.LogID == "" {
		log.LogID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = s.clock.Now()
	}
	if log.Outcome == "" {
		log.Outcome = domain.OutcomeSuccess
	}
	if log.Severity == "" {
		log.Severity = domain.SeverityInfo
	}

	if err := s.auditRepo.SaveAuditLog(ctx, log); err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// RecordAnomaly writes the audit record for a rejected entry candidate. The
// record captures who tried, from where, what the candidate looked like and
// which rules blocked it.
func (s *auditService) RecordAnomaly(ctx context.Context, entry domain.JournalEntry, vc validation.Context, findings []validation.Finding) error {
	severity := domain.SeverityWarning
	ruleNames := make([]string, 0, len(findings))
	details := make([]map[string]string, 0, len(findings))
	for _, f := range findings {
		if f.Severity == validation.SeverityCritical {
			severity = domain.SeverityCritical
		}
		ruleNames = append(ruleNames, f.Rule)
		details = append(details, map[string]string{
			"rule":     f.Rule,
			"severity": string(f.Severity),
			"message":  f.Message,
		})
	}

	return s.Record(ctx, domain.AuditLog{
		Kind:      domain.AuditAnomalyDetected,
		Outcome:   domain.OutcomeBlocked,
		Severity:  severity,
		ActorID:   vc.Actor.ActorID,
		ActorName: vc.Actor.Name,
		SourceIP:  vc.Meta.SourceIP,
		UserAgent: vc.Meta.UserAgent,
		Endpoint:  vc.Meta.Endpoint,
		Method:    vc.Meta.Method,
		EntryID:   vc.EntryID,
		Message:   fmt.Sprintf("entry candidate blocked by rules: %v", ruleNames),
		Detail: map[string]any{
			"sequence":     entry.Sequence,
			"entry_type":   string(entry.Type),
			"entry_date":   entry.EntryDate,
			"total_debit":  entry.TotalDebit.StringFixed(2),
			"total_credit": entry.TotalCredit.StringFixed(2),
			"findings":     details,
		},
	})
}

// ListAuditLogs retrieves a filtered slice of the trail. Only actors holding
// the audit view permission may read it.
func (s *auditService) ListAuditLogs(ctx context.Context, filter portsrepo.AuditLogFilter, limit int, offset int, actor domain.Actor) ([]domain.AuditLog, error) {
	logger := logging.FromContext(ctx)

	if !actor.HasPermission(domain.PermViewAuditLog) {
		logger.Warn("audit trail access denied", slog.String("actor_id", actor.ActorID))
		if err := s.Record(ctx, domain.AuditLog{
			Kind:      domain.AuditAccessEvent,
			Outcome:   domain.OutcomeBlocked,
			Severity:  domain.SeverityWarning,
			ActorID:   actor.ActorID,
			ActorName: actor.Name,
			Message:   "audit trail read denied",
		}); err != nil {
			logger.Error("failed to record denied audit access", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: audit trail requires the audit view permission", apperrors.ErrForbidden)
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	logs, err := s.auditRepo.ListAuditLogs(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
