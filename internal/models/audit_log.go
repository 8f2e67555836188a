package models

import "time"

// AuditLog is the row model for the audit_logs table. Rows are insert-only;
// database triggers reject UPDATE and DELETE.
type AuditLog struct {
	LogID     string         `json:"logID"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	ActorID   string         `json:"actorID"`
	ActorName string         `json:"actorName"`
	SourceIP  string         `json:"sourceIP"`
	UserAgent string         `json:"userAgent"`
	Endpoint  string         `json:"endpoint"`
	Method    string         `json:"method"`
	EntryID   string         `json:"entryID"`
	PeriodID  string         `json:"periodID"`
	Detail    map[string]any `json:"detail"` // Stored as JSONB
	Outcome   string         `json:"outcome"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
}
