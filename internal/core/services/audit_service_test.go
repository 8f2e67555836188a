package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/core/validation"
)

func TestRecord_FillsDefaults(t *testing.T) {
	auditRepo := new(MockAuditLogRepository)
	svc := NewAuditService(auditRepo, fixedClock{testNow})

	var saved domain.AuditLog
	auditRepo.On("SaveAuditLog", mock.Anything, mock.AnythingOfType("domain.AuditLog")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AuditLog) }).
		Return(nil)

	err := svc.Record(context.Background(), domain.AuditLog{
		Kind:    domain.AuditEntryCreated,
		ActorID: "u-accountant",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.LogID)
	assert.Equal(t, testNow, saved.Timestamp)
	assert.Equal(t, domain.OutcomeSuccess, saved.Outcome)
	assert.Equal(t, domain.SeverityInfo, saved.Severity)
}

func TestRecord_KeepsExplicitValues(t *testing.T) {
	auditRepo := new(MockAuditLogRepository)
	svc := NewAuditService(auditRepo, fixedClock{testNow})

	var saved domain.AuditLog
	auditRepo.On("SaveAuditLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AuditLog) }).
		Return(nil)

	err := svc.Record(context.Background(), domain.AuditLog{
		LogID:    "log-1",
		Kind:     domain.AuditHashMismatch,
		Outcome:  domain.OutcomeFailure,
		Severity: domain.SeverityCritical,
	})
	require.NoError(t, err)

	assert.Equal(t, "log-1", saved.LogID)
	assert.Equal(t, domain.OutcomeFailure, saved.Outcome)
	assert.Equal(t, domain.SeverityCritical, saved.Severity)
}

func TestRecordAnomaly_CriticalFindingEscalatesSeverity(t *testing.T) {
	auditRepo := new(MockAuditLogRepository)
	svc := NewAuditService(auditRepo, fixedClock{testNow}).(*auditService)

	var saved domain.AuditLog
	auditRepo.On("SaveAuditLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AuditLog) }).
		Return(nil)

	entry := domain.JournalEntry{
		Sequence:    7,
		Type:        domain.EntrySale,
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.NewFromInt(90),
	}
	findings := []validation.Finding{
		{Rule: "Balance", Message: "entry does not balance", Severity: validation.SeverityCritical},
	}

	err := svc.RecordAnomaly(context.Background(), entry,
		validation.Context{Actor: testAccountant(), Meta: testMeta()}, findings)
	require.NoError(t, err)

	assert.Equal(t, domain.AuditAnomalyDetected, saved.Kind)
	assert.Equal(t, domain.OutcomeBlocked, saved.Outcome)
	assert.Equal(t, domain.SeverityCritical, saved.Severity)
	assert.Equal(t, "u-accountant", saved.ActorID)
	assert.Equal(t, "10.0.0.7", saved.SourceIP)
	assert.Contains(t, saved.Message, "Balance")
}

func TestListAuditLogs_DeniedWithoutPermission(t *testing.T) {
	auditRepo := new(MockAuditLogRepository)
	svc := NewAuditService(auditRepo, fixedClock{testNow})

	var denied domain.AuditLog
	auditRepo.On("SaveAuditLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { denied = args.Get(1).(domain.AuditLog) }).
		Return(nil)

	clerk := domain.Actor{ActorID: "u-clerk", Permissions: map[string]bool{domain.PermCreateEntries: true}}
	_, err := svc.ListAuditLogs(context.Background(), portsrepo.AuditLogFilter{}, 10, 0, clerk)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// The denied read itself must land in the trail.
	assert.Equal(t, domain.AuditAccessEvent, denied.Kind)
	assert.Equal(t, domain.OutcomeBlocked, denied.Outcome)
	auditRepo.AssertNotCalled(t, "ListAuditLogs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListAuditLogs_DefaultLimit(t *testing.T) {
	auditRepo := new(MockAuditLogRepository)
	svc := NewAuditService(auditRepo, fixedClock{testNow})

	auditor := domain.Actor{ActorID: "u-auditor", Permissions: map[string]bool{domain.PermViewAuditLog: true}}
	auditRepo.On("ListAuditLogs", mock.Anything, mock.Anything, 100, 0).Return([]domain.AuditLog{{LogID: "log-1"}}, nil)

	logs, err := svc.ListAuditLogs(context.Background(), portsrepo.AuditLogFilter{}, 0, 0, auditor)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	auditRepo.AssertCalled(t, "ListAuditLogs", mock.Anything, mock.Anything, 100, 0)
}
