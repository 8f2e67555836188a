package mapping

import (
	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/models"
)

// ToModelAuditLog converts a domain AuditLog to a model AuditLog
func ToModelAuditLog(d domain.AuditLog) models.AuditLog {
	return models.AuditLog{
		LogID:     d.LogID,
		Timestamp: d.Timestamp,
		Kind:      string(d.Kind),
		ActorID:   d.ActorID,
		ActorName: d.ActorName,
		SourceIP:  d.SourceIP,
		UserAgent: d.UserAgent,
		Endpoint:  d.Endpoint,
		Method:    d.Method,
		EntryID:   d.EntryID,
		PeriodID:  d.PeriodID,
		Detail:    d.Detail,
		Outcome:   string(d.Outcome),
		Severity:  string(d.Severity),
		Message:   d.Message,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLog
func ToDomainAuditLog(m models.AuditLog) domain.AuditLog {
	return domain.AuditLog{
		LogID:     m.LogID,
		Timestamp: m.Timestamp,
		Kind:      domain.AuditEventKind(m.Kind),
		ActorID:   m.ActorID,
		ActorName: m.ActorName,
		SourceIP:  m.SourceIP,
		UserAgent: m.UserAgent,
		Endpoint:  m.Endpoint,
		Method:    m.Method,
		EntryID:   m.EntryID,
		PeriodID:  m.PeriodID,
		Detail:    m.Detail,
		Outcome:   domain.AuditOutcome(m.Outcome),
		Severity:  domain.AuditSeverity(m.Severity),
		Message:   m.Message,
	}
}
