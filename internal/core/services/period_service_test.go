package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/hashing"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/dto"
)

type periodServiceFixture struct {
	periodRepo       *MockPeriodRepository
	entryRepo        *MockEntryRepository
	counterRepo      *MockCounterRepository
	accountRepo      *MockAccountRepository
	counterpartyRepo *MockCounterpartyRepository
	auditSvc         *MockAuditRecorder
	svc              portssvc.PeriodSvcFacade
}

func newPeriodServiceFixture() *periodServiceFixture {
	f := &periodServiceFixture{
		periodRepo:       new(MockPeriodRepository),
		entryRepo:        new(MockEntryRepository),
		counterRepo:      new(MockCounterRepository),
		accountRepo:      new(MockAccountRepository),
		counterpartyRepo: new(MockCounterpartyRepository),
		auditSvc:         new(MockAuditRecorder),
	}
	repos := portsrepo.RepositoryProvider{
		AccountRepo: f.accountRepo,
		EntryRepo:   f.entryRepo,
		CounterRepo: f.counterRepo,
		PeriodRepo:  f.periodRepo,
	}
	chain := validation.NewChain(f.accountRepo, f.periodRepo, f.entryRepo, f.counterpartyRepo, nil)
	f.svc = NewPeriodService(repos, f.auditSvc, chain,
		fixedClock{testNow}, validator.New(validator.WithRequiredStructEnabled()),
		"journal_entries", "36050101")
	return f
}

// expectClosingChainLookups satisfies the rule chain reads for a generated
// closing entry about to take the given sequence number.
func (f *periodServiceFixture) expectClosingChainLookups(period *domain.Period, seq int64) {
	for _, acc := range marchAccounts() {
		account := acc
		f.accountRepo.On("FindAccountByCode", mock.Anything, account.Code).Return(&account, nil)
	}
	f.periodRepo.On("FindPeriodForDate", mock.Anything, period.EndDate).Return(period, nil)
	f.entryRepo.On("FindEntryIDBySequence", mock.Anything, seq).Return("", apperrors.ErrNotFound)
	f.entryRepo.On("MaxSequence", mock.Anything).Return(seq-1, nil)
}

func postedEntry(id string, seq int64, hashSeed string, lines ...domain.EntryLine) domain.JournalEntry {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range lines {
		lines[i].EntryID = id
		lines[i].LineIndex = i + 1
		totalDebit = totalDebit.Add(lines[i].Debit)
		totalCredit = totalCredit.Add(lines[i].Credit)
	}
	return domain.JournalEntry{
		EntryID:       id,
		Sequence:      seq,
		EntryDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Type:          domain.EntrySale,
		Status:        domain.EntryActive,
		PeriodID:      "p-2026-03",
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		IntegrityHash: strings.Repeat(hashSeed, 64/len(hashSeed)),
		Lines:         lines,
	}
}

func resultLine(code string, debit, credit decimal.Decimal) domain.EntryLine {
	return domain.EntryLine{AccountCode: code, Debit: debit, Credit: credit, Description: "movement on " + code}
}

func marchAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"11050501": auxAccount("11050501", domain.Asset, domain.NatureDebit),
		"41350101": auxAccount("41350101", domain.Revenue, domain.NatureCredit),
		"61350101": auxAccount("61350101", domain.Cost, domain.NatureDebit),
		"51150101": auxAccount("51150101", domain.Expense, domain.NatureDebit),
	}
}

func TestClosePeriod_ProfitSealsAndBuildsClosingEntry(t *testing.T) {
	f := newPeriodServiceFixture()
	actor := testAccountant()
	period := openMarchPeriod()

	entries := []domain.JournalEntry{
		postedEntry("e-1", 1, "a",
			resultLine("11050501", decimal.NewFromInt(5000), decimal.Zero),
			resultLine("41350101", decimal.Zero, decimal.NewFromInt(5000))),
		postedEntry("e-2", 2, "b",
			resultLine("61350101", decimal.NewFromInt(2000), decimal.Zero),
			resultLine("11050501", decimal.Zero, decimal.NewFromInt(2000))),
		postedEntry("e-3", 3, "c",
			resultLine("51150101", decimal.NewFromInt(1000), decimal.Zero),
			resultLine("11050501", decimal.Zero, decimal.NewFromInt(1000))),
	}

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(0, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, period.PeriodID, false).Return(entries, nil)
	f.accountRepo.On("FindAccountsByCodes", mock.Anything, mock.Anything).Return(marchAccounts(), nil)
	equity := auxAccount("36050101", domain.Equity, domain.NatureCredit)
	f.accountRepo.On("FindAccountByCode", mock.Anything, "36050101").Return(&equity, nil)
	f.expectClosingChainLookups(period, 4)

	f.entryRepo.On("Begin", mock.Anything).Return(fakeTx{}, nil)
	f.entryRepo.On("Rollback", mock.Anything, fakeTx{}).Return(nil)
	f.counterRepo.On("NextSequence", mock.Anything, fakeTx{}, "journal_entries").Return(int64(4), nil)

	var closing domain.JournalEntry
	f.entryRepo.On("SaveEntryInTx", mock.Anything, fakeTx{}, mock.AnythingOfType("domain.JournalEntry")).
		Run(func(args mock.Arguments) { closing = args.Get(2).(domain.JournalEntry) }).
		Return(nil)

	var sealedIDs []string
	f.entryRepo.On("SealEntries", mock.Anything, fakeTx{}, mock.Anything, period.PeriodID, testNow).
		Run(func(args mock.Arguments) { sealedIDs = args.Get(2).([]string) }).
		Return(nil)

	var sealed domain.Period
	f.periodRepo.On("UpdatePeriodInTx", mock.Anything, fakeTx{}, mock.AnythingOfType("domain.Period")).
		Run(func(args mock.Arguments) { sealed = args.Get(2).(domain.Period) }).
		Return(nil)
	f.entryRepo.On("Commit", mock.Anything, fakeTx{}).Return(nil)
	f.auditSvc.On("Record", mock.Anything, mock.MatchedBy(func(log domain.AuditLog) bool {
		return log.Kind == domain.AuditPeriodClosed
	})).Return(nil)

	resp, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March, Notes: "regular monthly close"},
		actor, testMeta())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(5000).Equal(resp.Result.Revenue))
	assert.True(t, decimal.NewFromInt(2000).Equal(resp.Result.Cost))
	assert.True(t, decimal.NewFromInt(1000).Equal(resp.Result.Expense))
	assert.True(t, decimal.NewFromInt(2000).Equal(resp.Result.NetProfit))

	require.Len(t, closing.Lines, 4)
	assert.Equal(t, domain.EntryClosing, closing.Type)
	assert.Equal(t, int64(4), closing.Sequence)
	assert.Equal(t, period.EndDate, closing.EntryDate)
	assert.True(t, closing.IsBalanced())

	// Revenue debited, cost and expense credited, profit credited to equity.
	assert.Equal(t, "41350101", closing.Lines[0].AccountCode)
	assert.True(t, decimal.NewFromInt(5000).Equal(closing.Lines[0].Debit))
	assert.Equal(t, "61350101", closing.Lines[1].AccountCode)
	assert.True(t, decimal.NewFromInt(2000).Equal(closing.Lines[1].Credit))
	assert.Equal(t, "51150101", closing.Lines[2].AccountCode)
	assert.True(t, decimal.NewFromInt(1000).Equal(closing.Lines[2].Credit))
	assert.Equal(t, "36050101", closing.Lines[3].AccountCode)
	assert.True(t, decimal.NewFromInt(2000).Equal(closing.Lines[3].Credit))
	for i, line := range closing.Lines {
		assert.Equal(t, i+1, line.LineIndex)
		assert.Len(t, line.LineHash, 64)
	}
	assert.Len(t, closing.IntegrityHash, 64)

	assert.Equal(t, []string{"e-1", "e-2", "e-3", closing.EntryID}, sealedIDs)

	expectedRoot, _ := hashing.BuildMerkle([]string{
		entries[0].IntegrityHash, entries[1].IntegrityHash, entries[2].IntegrityHash, closing.IntegrityHash,
	})
	assert.Equal(t, expectedRoot, resp.MerkleRoot)
	assert.Equal(t, expectedRoot, sealed.ClosingHash)
	assert.Equal(t, domain.PeriodClosed, sealed.Status)
	assert.Equal(t, actor.ActorID, sealed.ClosedBy)
	require.NotNil(t, sealed.ClosedAt)
	assert.Equal(t, testNow, *sealed.ClosedAt)
	assert.Equal(t, 4, sealed.EntryCount)
	assert.True(t, decimal.NewFromInt(13000).Equal(sealed.TotalDebit))
	assert.True(t, decimal.NewFromInt(13000).Equal(sealed.TotalCredit))
}

func TestClosePeriod_LossDebitsEquity(t *testing.T) {
	f := newPeriodServiceFixture()
	period := openMarchPeriod()

	entries := []domain.JournalEntry{
		postedEntry("e-1", 1, "a",
			resultLine("11050501", decimal.NewFromInt(1000), decimal.Zero),
			resultLine("41350101", decimal.Zero, decimal.NewFromInt(1000))),
		postedEntry("e-2", 2, "b",
			resultLine("51150101", decimal.NewFromInt(3000), decimal.Zero),
			resultLine("11050501", decimal.Zero, decimal.NewFromInt(3000))),
	}

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(0, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, period.PeriodID, false).Return(entries, nil)
	f.accountRepo.On("FindAccountsByCodes", mock.Anything, mock.Anything).Return(marchAccounts(), nil)
	equity := auxAccount("36050101", domain.Equity, domain.NatureCredit)
	f.accountRepo.On("FindAccountByCode", mock.Anything, "36050101").Return(&equity, nil)
	f.expectClosingChainLookups(period, 3)
	f.entryRepo.On("Begin", mock.Anything).Return(fakeTx{}, nil)
	f.entryRepo.On("Rollback", mock.Anything, fakeTx{}).Return(nil)
	f.counterRepo.On("NextSequence", mock.Anything, fakeTx{}, "journal_entries").Return(int64(3), nil)

	var closing domain.JournalEntry
	f.entryRepo.On("SaveEntryInTx", mock.Anything, fakeTx{}, mock.Anything).
		Run(func(args mock.Arguments) { closing = args.Get(2).(domain.JournalEntry) }).
		Return(nil)
	f.entryRepo.On("SealEntries", mock.Anything, fakeTx{}, mock.Anything, period.PeriodID, testNow).Return(nil)
	f.periodRepo.On("UpdatePeriodInTx", mock.Anything, fakeTx{}, mock.Anything).Return(nil)
	f.entryRepo.On("Commit", mock.Anything, fakeTx{}).Return(nil)
	f.auditSvc.On("Record", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(-2000).Equal(resp.Result.NetProfit))
	require.Len(t, closing.Lines, 3)
	last := closing.Lines[2]
	assert.Equal(t, "36050101", last.AccountCode)
	assert.True(t, decimal.NewFromInt(2000).Equal(last.Debit))
	assert.True(t, last.Credit.IsZero())
	assert.True(t, closing.IsBalanced())
}

func TestClosePeriod_EmptyPeriodSealsWithoutClosingEntry(t *testing.T) {
	f := newPeriodServiceFixture()
	period := openMarchPeriod()

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(0, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, period.PeriodID, false).Return([]domain.JournalEntry{}, nil)
	f.accountRepo.On("FindAccountsByCodes", mock.Anything, mock.Anything).Return(map[string]domain.Account{}, nil)
	f.entryRepo.On("Begin", mock.Anything).Return(fakeTx{}, nil)
	f.entryRepo.On("Rollback", mock.Anything, fakeTx{}).Return(nil)
	f.entryRepo.On("SealEntries", mock.Anything, fakeTx{}, mock.Anything, period.PeriodID, testNow).Return(nil)

	var sealed domain.Period
	f.periodRepo.On("UpdatePeriodInTx", mock.Anything, fakeTx{}, mock.AnythingOfType("domain.Period")).
		Run(func(args mock.Arguments) { sealed = args.Get(2).(domain.Period) }).
		Return(nil)
	f.entryRepo.On("Commit", mock.Anything, fakeTx{}).Return(nil)
	f.auditSvc.On("Record", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.NoError(t, err)

	assert.Equal(t, domain.PeriodClosed, sealed.Status)
	assert.Equal(t, 0, sealed.EntryCount)
	assert.True(t, resp.Result.NetProfit.IsZero())
	f.counterRepo.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything, mock.Anything)
	f.entryRepo.AssertNotCalled(t, "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestClosePeriod_AlreadyClosed(t *testing.T) {
	f := newPeriodServiceFixture()
	closed := openMarchPeriod()
	closed.Status = domain.PeriodClosed
	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(closed, nil)

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrPeriodClosed)
}

func TestClosePeriod_Locked(t *testing.T) {
	f := newPeriodServiceFixture()
	locked := openMarchPeriod()
	locked.Status = domain.PeriodLocked
	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(locked, nil)

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrImmutableRecord)
}

func TestClosePeriod_UnbalancedPeriodRefusesToSeal(t *testing.T) {
	f := newPeriodServiceFixture()
	period := openMarchPeriod()

	// A stored entry whose totals drifted apart must abort the close before
	// anything is written.
	skewed := postedEntry("e-1", 1, "a",
		resultLine("11050501", decimal.RequireFromString("1000.00"), decimal.Zero),
		resultLine("41350101", decimal.Zero, decimal.RequireFromString("999.98")))

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(0, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, period.PeriodID, false).Return([]domain.JournalEntry{skewed}, nil)

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrUnbalanced)
	assert.Contains(t, err.Error(), "0.02")
	f.entryRepo.AssertNotCalled(t, "Begin", mock.Anything)
	f.entryRepo.AssertNotCalled(t, "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything)
	f.periodRepo.AssertNotCalled(t, "UpdatePeriodInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestClosePeriod_OutstandingDraftsBlockClose(t *testing.T) {
	f := newPeriodServiceFixture()
	period := openMarchPeriod()

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(2, nil)

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "2 draft entries")
	f.entryRepo.AssertNotCalled(t, "ListEntriesByPeriod", mock.Anything, mock.Anything, mock.Anything)
	f.entryRepo.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestClosePeriod_ClosingEntryBlockedByRuleChain(t *testing.T) {
	f := newPeriodServiceFixture()
	period := openMarchPeriod()

	entries := []domain.JournalEntry{
		postedEntry("e-1", 1, "a",
			resultLine("11050501", decimal.NewFromInt(5000), decimal.Zero),
			resultLine("41350101", decimal.Zero, decimal.NewFromInt(5000))),
	}

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(period, nil)
	f.entryRepo.On("CountDraftEntries", mock.Anything, period.PeriodID).Return(0, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, period.PeriodID, false).Return(entries, nil)
	f.accountRepo.On("FindAccountsByCodes", mock.Anything, mock.Anything).Return(marchAccounts(), nil)

	// An equity account that stopped accepting postings must block the
	// generated closing entry like any other candidate.
	equity := auxAccount("36050101", domain.Equity, domain.NatureCredit)
	equity.AllowsPostings = false
	f.accountRepo.On("FindAccountByCode", mock.Anything, "36050101").Return(&equity, nil)
	f.expectClosingChainLookups(period, 2)

	f.entryRepo.On("Begin", mock.Anything).Return(fakeTx{}, nil)
	f.entryRepo.On("Rollback", mock.Anything, fakeTx{}).Return(nil)
	f.counterRepo.On("NextSequence", mock.Anything, fakeTx{}, "journal_entries").Return(int64(2), nil)

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "36050101")
	f.entryRepo.AssertNotCalled(t, "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything)
	f.entryRepo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestClosePeriod_RequiresPermission(t *testing.T) {
	f := newPeriodServiceFixture()
	viewer := domain.Actor{ActorID: "u-viewer", Permissions: map[string]bool{domain.PermCreateEntries: true}}

	_, err := f.svc.ClosePeriod(context.Background(),
		dto.ClosePeriodRequest{Year: 2026, Month: time.March}, viewer, testMeta())
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	f.periodRepo.AssertNotCalled(t, "FindPeriodByMonth", mock.Anything, mock.Anything, mock.Anything)
}

func TestReopenPeriod_VoidsClosingEntryAndClearsSeal(t *testing.T) {
	f := newPeriodServiceFixture()
	actor := testAccountant()

	closedAt := testNow.Add(-24 * time.Hour)
	closed := openMarchPeriod()
	closed.Status = domain.PeriodClosed
	closed.ClosedAt = &closedAt
	closed.ClosedBy = "u-accountant"
	closed.ClosingHash = strings.Repeat("d", 64)
	closed.EntryCount = 2
	closed.TotalDebit = decimal.NewFromInt(1500)
	closed.TotalCredit = decimal.NewFromInt(1500)

	regular := postedEntry("e-1", 1, "a",
		resultLine("11050501", decimal.NewFromInt(1000), decimal.Zero),
		resultLine("41350101", decimal.Zero, decimal.NewFromInt(1000)))
	closingEntry := postedEntry("e-close", 4, "e",
		resultLine("41350101", decimal.NewFromInt(500), decimal.Zero),
		resultLine("36050101", decimal.Zero, decimal.NewFromInt(500)))
	closingEntry.Type = domain.EntryClosing
	entries := []domain.JournalEntry{regular, closingEntry}

	justification := "closing ran against the wrong exchange rate table"

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(closed, nil)
	f.entryRepo.On("ListEntriesByPeriod", mock.Anything, closed.PeriodID, false).Return(entries, nil)
	f.entryRepo.On("MarkVoided", mock.Anything, "e-close", actor.ActorID, "period reopened: "+justification, testNow).Return(nil)

	var reopened domain.Period
	f.periodRepo.On("UpdatePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).
		Run(func(args mock.Arguments) { reopened = args.Get(1).(domain.Period) }).
		Return(nil)
	f.auditSvc.On("Record", mock.Anything, mock.MatchedBy(func(log domain.AuditLog) bool {
		return log.Kind == domain.AuditPeriodReopened
	})).Return(nil)

	period, err := f.svc.ReopenPeriod(context.Background(),
		dto.ReopenPeriodRequest{Year: 2026, Month: time.March, Justification: justification},
		actor, testMeta())
	require.NoError(t, err)

	assert.Equal(t, domain.PeriodOpen, period.Status)
	assert.Equal(t, domain.PeriodOpen, reopened.Status)
	assert.Empty(t, reopened.ClosingHash)
	assert.Empty(t, reopened.ClosedBy)
	assert.Nil(t, reopened.ClosedAt)
	f.entryRepo.AssertCalled(t, "MarkVoided", mock.Anything, "e-close", actor.ActorID, "period reopened: "+justification, testNow)

	// The voided closing entry leaves the period stats.
	assert.Equal(t, 1, reopened.EntryCount)
	assert.True(t, decimal.NewFromInt(1000).Equal(reopened.TotalDebit))
	assert.True(t, decimal.NewFromInt(1000).Equal(reopened.TotalCredit))
}

func TestReopenPeriod_LockedStaysLocked(t *testing.T) {
	f := newPeriodServiceFixture()
	locked := openMarchPeriod()
	locked.Status = domain.PeriodLocked
	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(locked, nil)

	_, err := f.svc.ReopenPeriod(context.Background(),
		dto.ReopenPeriodRequest{Year: 2026, Month: time.March, Justification: "attempting to reopen a locked period"},
		testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrImmutableRecord)
	f.periodRepo.AssertNotCalled(t, "UpdatePeriod", mock.Anything, mock.Anything)
}

func TestReopenPeriod_AlreadyOpen(t *testing.T) {
	f := newPeriodServiceFixture()
	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(openMarchPeriod(), nil)

	_, err := f.svc.ReopenPeriod(context.Background(),
		dto.ReopenPeriodRequest{Year: 2026, Month: time.March, Justification: "reopening a period that is already open"},
		testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLockPeriod_ClosedBecomesLocked(t *testing.T) {
	f := newPeriodServiceFixture()
	closed := openMarchPeriod()
	closed.Status = domain.PeriodClosed

	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(closed, nil)
	var locked domain.Period
	f.periodRepo.On("UpdatePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).
		Run(func(args mock.Arguments) { locked = args.Get(1).(domain.Period) }).
		Return(nil)
	f.auditSvc.On("Record", mock.Anything, mock.MatchedBy(func(log domain.AuditLog) bool {
		return log.Kind == domain.AuditPeriodLocked
	})).Return(nil)

	period, err := f.svc.LockPeriod(context.Background(), 2026, time.March, testAccountant(), testMeta())
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodLocked, period.Status)
	assert.Equal(t, domain.PeriodLocked, locked.Status)
}

func TestLockPeriod_OpenCannotBeLocked(t *testing.T) {
	f := newPeriodServiceFixture()
	f.periodRepo.On("FindPeriodByMonth", mock.Anything, 2026, time.March).Return(openMarchPeriod(), nil)

	_, err := f.svc.LockPeriod(context.Background(), 2026, time.March, testAccountant(), testMeta())
	require.ErrorIs(t, err, apperrors.ErrValidation)
	f.periodRepo.AssertNotCalled(t, "UpdatePeriod", mock.Anything, mock.Anything)
}

func TestEnsurePeriod_CreatesMissingMonth(t *testing.T) {
	f := newPeriodServiceFixture()
	actor := testAccountant()
	date := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)

	f.periodRepo.On("FindPeriodForDate", mock.Anything, date).Return(nil, apperrors.ErrNotFound)
	var saved domain.Period
	f.periodRepo.On("SavePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Period) }).
		Return(nil)

	period, err := f.svc.EnsurePeriod(context.Background(), date, actor)
	require.NoError(t, err)

	assert.Equal(t, 2026, saved.Year)
	assert.Equal(t, time.July, saved.Month)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), saved.StartDate)
	assert.Equal(t, time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), saved.EndDate)
	assert.Equal(t, domain.PeriodOpen, saved.Status)
	assert.Equal(t, saved.PeriodID, period.PeriodID)
}

func TestEnsurePeriod_DuplicateRaceReReads(t *testing.T) {
	f := newPeriodServiceFixture()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	existing := openMarchPeriod()

	f.periodRepo.On("FindPeriodForDate", mock.Anything, date).Return(nil, apperrors.ErrNotFound).Once()
	f.periodRepo.On("SavePeriod", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate)
	f.periodRepo.On("FindPeriodForDate", mock.Anything, date).Return(existing, nil).Once()

	period, err := f.svc.EnsurePeriod(context.Background(), date, testAccountant())
	require.NoError(t, err)
	assert.Equal(t, existing.PeriodID, period.PeriodID)
}
