package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/dto"
)

// fakeTx satisfies pgx.Tx for services that run repository calls inside a
// transaction. The mocked repositories ignore it.
type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (fakeTx) Conn() *pgx.Conn                                               { return nil }

// fixedClock pins "now" for deterministic assertions.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

// --- Repository mocks ---

type MockEntryRepository struct{ mock.Mock }

var _ portsrepo.EntryRepositoryWithTx = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntryBySequence(ctx context.Context, sequence int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, sequence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntryIDBySequence(ctx context.Context, sequence int64) (string, error) {
	args := m.Called(ctx, sequence)
	return args.String(0), args.Error(1)
}

func (m *MockEntryRepository) MaxSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByPeriod(ctx context.Context, periodID string, includeAll bool) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, periodID, includeAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) CountDraftEntries(ctx context.Context, periodID string) (int, error) {
	args := m.Called(ctx, periodID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByDateRange(ctx context.Context, from time.Time, to time.Time, includeAll bool) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, from, to, includeAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkVoided(ctx context.Context, entryID string, voidedBy string, reason string, now time.Time) error {
	args := m.Called(ctx, entryID, voidedBy, reason, now)
	return args.Error(0)
}

func (m *MockEntryRepository) SealEntries(ctx context.Context, tx pgx.Tx, entryIDs []string, periodID string, sealedAt time.Time) error {
	args := m.Called(ctx, tx, entryIDs, periodID, sealedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockCounterRepository struct{ mock.Mock }

var _ portsrepo.CounterRepository = (*MockCounterRepository)(nil)

func (m *MockCounterRepository) NextSequence(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	args := m.Called(ctx, tx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) CurrentSequence(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountRepository struct{ mock.Mock }

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByKind(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

type MockPeriodRepository struct{ mock.Mock }

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByMonth(ctx context.Context, year int, month time.Month) (*domain.Period, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, limit int, offset int) ([]domain.Period, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) ListOpenPeriods(ctx context.Context) ([]domain.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) UpdatePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) UpdatePeriodInTx(ctx context.Context, tx pgx.Tx, period domain.Period) error {
	args := m.Called(ctx, tx, period)
	return args.Error(0)
}

type MockCounterpartyRepository struct{ mock.Mock }

var _ portsrepo.CounterpartyRepositoryFacade = (*MockCounterpartyRepository)(nil)

func (m *MockCounterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	args := m.Called(ctx, counterpartyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) FindCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) ListCounterparties(ctx context.Context, limit int, offset int) ([]domain.Counterparty, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) DeactivateCounterparty(ctx context.Context, counterpartyID string, userID string, now time.Time) error {
	args := m.Called(ctx, counterpartyID, userID, now)
	return args.Error(0)
}

type MockAuditLogRepository struct{ mock.Mock }

var _ portsrepo.AuditLogRepositoryFacade = (*MockAuditLogRepository)(nil)

func (m *MockAuditLogRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindAuditLogByID(ctx context.Context, auditID string) (*domain.AuditLog, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) ListAuditLogs(ctx context.Context, filter portsrepo.AuditLogFilter, limit int, offset int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) CountAuditLogs(ctx context.Context, filter portsrepo.AuditLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// --- Service mocks ---

type MockAuditRecorder struct{ mock.Mock }

var _ portssvc.AuditRecorderSvc = (*MockAuditRecorder)(nil)

func (m *MockAuditRecorder) Record(ctx context.Context, log domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRecorder) RecordAnomaly(ctx context.Context, entry domain.JournalEntry, vc validation.Context, findings []validation.Finding) error {
	args := m.Called(ctx, entry, vc, findings)
	return args.Error(0)
}

type MockPeriodWriter struct{ mock.Mock }

var _ portssvc.PeriodWriterSvc = (*MockPeriodWriter)(nil)

func (m *MockPeriodWriter) EnsurePeriod(ctx context.Context, date time.Time, actor domain.Actor) (*domain.Period, error) {
	args := m.Called(ctx, date, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodWriter) ClosePeriod(ctx context.Context, req dto.ClosePeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*dto.ClosePeriodResponse, error) {
	args := m.Called(ctx, req, actor, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClosePeriodResponse), args.Error(1)
}

func (m *MockPeriodWriter) ReopenPeriod(ctx context.Context, req dto.ReopenPeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error) {
	args := m.Called(ctx, req, actor, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodWriter) LockPeriod(ctx context.Context, year int, month time.Month, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error) {
	args := m.Called(ctx, year, month, actor, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyIntegrityBreach(ctx context.Context, periodLabel string, affectedEntries int) error {
	args := m.Called(ctx, periodLabel, affectedEntries)
	return args.Error(0)
}

func (m *MockNotifier) NotifySequenceNearingLimit(ctx context.Context, counterName string, current int64, limit int64) error {
	args := m.Called(ctx, counterName, current, limit)
	return args.Error(0)
}

// --- Shared fixtures ---

func testAccountant() domain.Actor {
	return domain.Actor{
		ActorID: "u-accountant",
		Name:    "Avery Books",
		Permissions: map[string]bool{
			domain.PermCreateEntries: true,
			domain.PermVoidEntries:   true,
			domain.PermClosePeriods:  true,
			domain.PermReopenPeriods: true,
		},
	}
}

func testMeta() domain.RequestMeta {
	return domain.RequestMeta{
		SourceIP:  "10.0.0.7",
		UserAgent: "ledgercli/1.0",
		Endpoint:  "/entries",
		Method:    "POST",
	}
}

func auxAccount(code string, kind domain.AccountKind, nature domain.AccountNature) domain.Account {
	return domain.Account{
		AccountID:      "acct-" + code,
		Code:           code,
		Name:           "account " + code,
		Level:          domain.LevelAuxiliary,
		Nature:         nature,
		Kind:           kind,
		AllowsPostings: true,
		IsActive:       true,
	}
}

func openMarchPeriod() *domain.Period {
	return &domain.Period{
		PeriodID:  "p-2026-03",
		Year:      2026,
		Month:     time.March,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    domain.PeriodOpen,
	}
}
