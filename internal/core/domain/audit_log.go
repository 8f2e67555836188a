package domain

import "time"

// AuditEventKind enumerates every auditable event in the ledger core.
type AuditEventKind string

const (
	AuditEntryCreated  AuditEventKind = "ENTRY_CREATED"
	AuditEntryModified AuditEventKind = "ENTRY_MODIFIED"
	AuditEntryVoided   AuditEventKind = "ENTRY_VOIDED"

	AuditPeriodClosed   AuditEventKind = "PERIOD_CLOSED"
	AuditPeriodReopened AuditEventKind = "PERIOD_REOPENED"
	AuditPeriodLocked   AuditEventKind = "PERIOD_LOCKED"

	AuditAccessEvent       AuditEventKind = "ACCESS_EVENT"
	AuditAnomalyDetected   AuditEventKind = "ANOMALY_DETECTED"
	AuditClosedPeriodWrite AuditEventKind = "CLOSED_PERIOD_WRITE"
	AuditUnbalanced        AuditEventKind = "UNBALANCED_DETECTED"

	AuditIntegrityCheck AuditEventKind = "INTEGRITY_CHECK"
	AuditHashMismatch   AuditEventKind = "HASH_MISMATCH"
)

// AuditOutcome is the result of the audited operation.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "SUCCESS"
	OutcomeFailure AuditOutcome = "FAILURE"
	OutcomeBlocked AuditOutcome = "BLOCKED"
	OutcomeWarning AuditOutcome = "WARNING"
)

// AuditSeverity grades how serious the audited event is.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "INFO"
	SeverityWarning  AuditSeverity = "WARNING"
	SeverityError    AuditSeverity = "ERROR"
	SeverityCritical AuditSeverity = "CRITICAL"
)

// AuditLog is one write-once record of a mutation or anomaly. Once persisted
// it is never updated or deleted; the repository port exposes no way to do so.
// Entry/Period references are weak (plain ids, reporting only).
type AuditLog struct {
	LogID     string         `json:"logID"` // Primary key (UUID)
	Timestamp time.Time      `json:"timestamp"`
	Kind      AuditEventKind `json:"kind"`
	ActorID   string         `json:"actorID"`
	ActorName string         `json:"actorName"` // Denormalized for the historical record
	SourceIP  string         `json:"sourceIP"`
	UserAgent string         `json:"userAgent"`
	Endpoint  string         `json:"endpoint"`
	Method    string         `json:"method"`
	EntryID   string         `json:"entryID"`  // Weak reference, may be empty
	PeriodID  string         `json:"periodID"` // Weak reference, may be empty
	Detail    map[string]any `json:"detail"`
	Outcome   AuditOutcome   `json:"outcome"`
	Severity  AuditSeverity  `json:"severity"`
	Message   string         `json:"message"` // Error message when outcome is not success
}
