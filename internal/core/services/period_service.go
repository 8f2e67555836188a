package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/hashing"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/dto"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// periodService manages the accounting period lifecycle, including the
// closing algorithm that seals a month under a Merkle root.
type periodService struct {
	periodRepo  portsrepo.PeriodRepositoryFacade
	entryRepo   portsrepo.EntryRepositoryWithTx
	counterRepo portsrepo.CounterRepository
	accountRepo portsrepo.AccountReader
	auditSvc    portssvc.AuditRecorderSvc
	chain       *validation.Chain
	clock       portssvc.Clock
	validate    *validator.Validate

	counterName       string
	equityAccountCode string
}

// NewPeriodService creates a new period service. equityAccountCode names the
// retained-earnings account the closing entry settles into. The chain vets the
// generated closing entry like any other candidate; pass one without a
// recorder, a blocked closing entry is a computation bug, not an anomaly.
func NewPeriodService(
	repos portsrepo.RepositoryProvider,
	auditSvc portssvc.AuditRecorderSvc,
	chain *validation.Chain,
	clock portssvc.Clock,
	validate *validator.Validate,
	counterName string,
	equityAccountCode string,
) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo:        repos.PeriodRepo,
		entryRepo:         repos.EntryRepo,
		counterRepo:       repos.CounterRepo,
		accountRepo:       repos.AccountRepo,
		auditSvc:          auditSvc,
		chain:             chain,
		clock:             clock,
		validate:          validate,
		counterName:       counterName,
		equityAccountCode: equityAccountCode,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// EnsurePeriod returns the period containing the date, creating an OPEN one
// when none exists yet. Creation races resolve by re-reading.
func (s *periodService) EnsurePeriod(ctx context.Context, date time.Time, actor domain.Actor) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, date)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find period for %s: %w", date.Format(time.DateOnly), err)
	}

	now := s.clock.Now()
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	fresh := domain.Period{
		PeriodID:    uuid.NewString(),
		Year:        date.Year(),
		Month:       date.Month(),
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, -1),
		Status:      domain.PeriodOpen,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ActorID,
		},
	}
	if err := s.periodRepo.SavePeriod(ctx, fresh); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Another writer created it between our read and write.
			return s.periodRepo.FindPeriodForDate(ctx, date)
		}
		return nil, fmt.Errorf("failed to create period %s: %w", fresh.Label(), err)
	}

	logging.FromContext(ctx).Info("period opened", slog.String("period", fresh.Label()))
	return &fresh, nil
}

// GetPeriod retrieves the period for a calendar year and month.
func (s *periodService) GetPeriod(ctx context.Context, year int, month time.Month) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", year, int(month), err)
	}
	return period, nil
}

// ListPeriods retrieves periods, newest first.
func (s *periodService) ListPeriods(ctx context.Context, limit int, offset int) ([]domain.Period, error) {
	if limit <= 0 || limit > 200 {
		limit = 24
	}
	periods, err := s.periodRepo.ListPeriods(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// accountBalance is the per-account net movement accumulated during closing.
type accountBalance struct {
	account domain.Account
	balance decimal.Decimal // Natural-side balance: credit side for revenue, debit side for cost/expense
}

// computeResult walks the period's active entries and aggregates the result
// account balances. Returned balances are keyed and then ordered by code.
func (s *periodService) computeResult(ctx context.Context, entries []domain.JournalEntry) (domain.PeriodResult, []accountBalance, error) {
	codes := make([]string, 0)
	seen := map[string]bool{}
	for _, e := range entries {
		for _, l := range e.Lines {
			if !seen[l.AccountCode] {
				seen[l.AccountCode] = true
				codes = append(codes, l.AccountCode)
			}
		}
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return domain.PeriodResult{}, nil, fmt.Errorf("failed to load accounts for closing: %w", err)
	}

	balances := map[string]*accountBalance{}
	for _, e := range entries {
		for _, l := range e.Lines {
			acc, ok := accounts[l.AccountCode]
			if !ok {
				continue
			}
			var movement decimal.Decimal
			switch acc.Kind {
			case domain.Revenue:
				movement = l.Credit.Sub(l.Debit)
			case domain.Cost, domain.Expense:
				movement = l.Debit.Sub(l.Credit)
			default:
				continue
			}
			b, ok := balances[l.AccountCode]
			if !ok {
				b = &accountBalance{account: acc, balance: decimal.Zero}
				balances[l.AccountCode] = b
			}
			b.balance = b.balance.Add(movement)
		}
	}

	result := domain.PeriodResult{
		Revenue: decimal.Zero,
		Cost:    decimal.Zero,
		Expense: decimal.Zero,
	}
	ordered := make([]accountBalance, 0, len(balances))
	for _, b := range balances {
		if b.balance.IsZero() {
			continue
		}
		switch b.account.Kind {
		case domain.Revenue:
			result.Revenue = result.Revenue.Add(b.balance)
		case domain.Cost:
			result.Cost = result.Cost.Add(b.balance)
		case domain.Expense:
			result.Expense = result.Expense.Add(b.balance)
		}
		ordered = append(ordered, *b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].account.Code < ordered[j].account.Code })

	result.GrossProfit = result.Revenue.Sub(result.Cost)
	result.NetProfit = result.GrossProfit.Sub(result.Expense)
	return result, ordered, nil
}

// buildClosingEntry assembles the entry that zeroes every result account into
// equity. Revenue accounts are debited by their credit balance, cost and
// expense accounts credited by their debit balance, and the net lands on the
// equity account: credit when profit, debit when loss. Line indexes run
// monotonically across the whole entry.
func (s *periodService) buildClosingEntry(period *domain.Period, result domain.PeriodResult, balances []accountBalance, equity domain.Account, actor domain.Actor, now time.Time) domain.JournalEntry {
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.ActorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.ActorID,
	}

	lines := make([]domain.EntryLine, 0, len(balances)+1)
	index := 0
	addLine := func(acc domain.Account, debit, credit decimal.Decimal, desc string) {
		index++
		lines = append(lines, domain.EntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   acc.AccountID,
			AccountCode: acc.Code,
			LineIndex:   index,
			Debit:       debit,
			Credit:      credit,
			Description: desc,
			AuditFields: audit,
		})
	}

	// Result accounts in three passes so the entry reads like a closing
	// worksheet: revenue first, then cost, then expense.
	for _, kind := range []domain.AccountKind{domain.Revenue, domain.Cost, domain.Expense} {
		for _, b := range balances {
			if b.account.Kind != kind {
				continue
			}
			desc := fmt.Sprintf("Close %s %s for %s", b.account.Code, b.account.Name, period.Label())
			if kind == domain.Revenue {
				if b.balance.IsPositive() {
					addLine(b.account, b.balance, decimal.Zero, desc)
				} else {
					addLine(b.account, decimal.Zero, b.balance.Neg(), desc)
				}
			} else {
				if b.balance.IsPositive() {
					addLine(b.account, decimal.Zero, b.balance, desc)
				} else {
					addLine(b.account, b.balance.Neg(), decimal.Zero, desc)
				}
			}
		}
	}

	equityDesc := fmt.Sprintf("Period result for %s", period.Label())
	if result.NetProfit.IsNegative() {
		addLine(equity, result.NetProfit.Neg(), decimal.Zero, equityDesc)
	} else if result.NetProfit.IsPositive() {
		addLine(equity, decimal.Zero, result.NetProfit, equityDesc)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}

	return domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   period.EndDate,
		Type:        domain.EntryClosing,
		Description: fmt.Sprintf("Closing entry for period %s", period.Label()),
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Difference:  totalDebit.Sub(totalCredit),
		Status:      domain.EntryActive,
		PeriodID:    period.PeriodID,
		SealedAt:    now,
		Lines:       lines,
		AuditFields: audit,
	}
}

// ClosePeriod runs the full closing algorithm atomically: result computation,
// closing entry, Merkle seal and the status flip.
func (s *periodService) ClosePeriod(ctx context.Context, req dto.ClosePeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*dto.ClosePeriodResponse, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if !actor.HasPermission(domain.PermClosePeriods) {
		return nil, fmt.Errorf("%w: closing periods requires the close permission", apperrors.ErrForbidden)
	}

	period, err := s.periodRepo.FindPeriodByMonth(ctx, req.Year, req.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", req.Year, int(req.Month), err)
	}
	switch period.Status {
	case domain.PeriodClosed:
		return nil, fmt.Errorf("%w: period %s is already closed", apperrors.ErrPeriodClosed, period.Label())
	case domain.PeriodLocked:
		return nil, fmt.Errorf("%w: period %s is locked", apperrors.ErrImmutableRecord, period.Label())
	}

	drafts, err := s.entryRepo.CountDraftEntries(ctx, period.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to count draft entries: %w", err)
	}
	if drafts > 0 {
		return nil, fmt.Errorf("%w: period %s has %d draft entries, post or void them before closing", apperrors.ErrValidation, period.Label(), drafts)
	}

	entries, err := s.entryRepo.ListEntriesByPeriod(ctx, period.PeriodID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for closing: %w", err)
	}

	// The period must balance as a whole before anything is sealed. Entries
	// balance individually at posting time, but the aggregate check is re-run
	// here against what is actually stored.
	periodDebit := decimal.Zero
	periodCredit := decimal.Zero
	for _, e := range entries {
		periodDebit = periodDebit.Add(e.TotalDebit)
		periodCredit = periodCredit.Add(e.TotalCredit)
	}
	if diff := periodDebit.Sub(periodCredit).Abs(); diff.GreaterThan(domain.BalanceTolerance) {
		return nil, fmt.Errorf("%w: period %s debits %s and credits %s differ by %s",
			apperrors.ErrUnbalanced, period.Label(),
			periodDebit.StringFixed(2), periodCredit.StringFixed(2), diff.StringFixed(2))
	}

	result, balances, err := s.computeResult(ctx, entries)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var closing domain.JournalEntry
	needsClosing := len(balances) > 0
	if needsClosing {
		equity, err := s.accountRepo.FindAccountByCode(ctx, s.equityAccountCode)
		if err != nil {
			return nil, fmt.Errorf("failed to load equity account %s: %w", s.equityAccountCode, err)
		}
		closing = s.buildClosingEntry(period, result, balances, *equity, actor, now)
		if !closing.IsBalanced() {
			// A closing entry that does not balance means the result
			// computation itself is wrong; refuse to seal anything.
			return nil, fmt.Errorf("%w: closing entry difference %s", apperrors.ErrUnbalanced, closing.Difference.StringFixed(2))
		}
	}

	tx, err := s.entryRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin closing transaction: %w", err)
	}
	defer func() { _ = s.entryRepo.Rollback(ctx, tx) }()

	if needsClosing {
		closing.Sequence, err = s.counterRepo.NextSequence(ctx, tx, s.counterName)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate closing sequence: %w", err)
		}

		// The closing entry goes through the same rule chain as any posted
		// entry, under a system actor so role limits do not apply to it.
		system := domain.Actor{ActorID: actor.ActorID, Name: actor.Name, IsSuperuser: true}
		vres := s.chain.Validate(ctx, closing, validation.Context{
			Actor: system,
			Meta:  meta,
			Mode:  validation.ModeCreate,
		})
		if !vres.Valid() {
			return nil, validationError(vres.Blocking())
		}

		if err := stampHashes(&closing); err != nil {
			return nil, err
		}
		if err := s.entryRepo.SaveEntryInTx(ctx, tx, closing); err != nil {
			return nil, fmt.Errorf("failed to save closing entry: %w", err)
		}
	}

	// Seal: Merkle root over every active entry hash in sequence order,
	// closing entry included.
	leaves := make([]string, 0, len(entries)+1)
	entryIDs := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		leaves = append(leaves, e.IntegrityHash)
		entryIDs = append(entryIDs, e.EntryID)
	}
	if needsClosing {
		leaves = append(leaves, closing.IntegrityHash)
		entryIDs = append(entryIDs, closing.EntryID)
	}
	root, _ := hashing.BuildMerkle(leaves)

	if err := s.entryRepo.SealEntries(ctx, tx, entryIDs, period.PeriodID, now); err != nil {
		return nil, fmt.Errorf("failed to seal period entries: %w", err)
	}

	sealed := *period
	sealed.Status = domain.PeriodClosed
	sealed.ClosedAt = &now
	sealed.ClosedBy = actor.ActorID
	sealed.ClosingHash = root
	sealed.Notes = req.Notes
	sealed.EntryCount = len(entryIDs)
	sealed.TotalDebit = periodDebit
	sealed.TotalCredit = periodCredit
	if needsClosing {
		sealed.TotalDebit = sealed.TotalDebit.Add(closing.TotalDebit)
		sealed.TotalCredit = sealed.TotalCredit.Add(closing.TotalCredit)
	}
	sealed.LastUpdatedAt = now
	sealed.LastUpdatedBy = actor.ActorID

	if err := s.periodRepo.UpdatePeriodInTx(ctx, tx, sealed); err != nil {
		return nil, fmt.Errorf("failed to close period %s: %w", period.Label(), err)
	}
	if err := s.entryRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit period close: %w", err)
	}

	logger.Info("period closed",
		slog.String("period", sealed.Label()),
		slog.Int("entries_sealed", len(entryIDs)),
		slog.String("merkle_root", root),
		slog.String("net_profit", result.NetProfit.StringFixed(2)))

	s.recordPeriodAudit(ctx, domain.AuditPeriodClosed, sealed, actor, meta, map[string]any{
		"merkle_root":    root,
		"entries_sealed": len(entryIDs),
		"revenue":        result.Revenue.StringFixed(2),
		"cost":           result.Cost.StringFixed(2),
		"expense":        result.Expense.StringFixed(2),
		"net_profit":     result.NetProfit.StringFixed(2),
		"closing_entry":  closing.EntryID,
	})

	return &dto.ClosePeriodResponse{
		Period:       sealed,
		ClosingEntry: closing,
		Result:       result,
		MerkleRoot:   root,
	}, nil
}

// ReopenPeriod flips a CLOSED period back to OPEN, voiding its closing entry.
// The justification is mandatory and lands verbatim in the audit trail.
func (s *periodService) ReopenPeriod(ctx context.Context, req dto.ReopenPeriodRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if !actor.HasPermission(domain.PermReopenPeriods) {
		return nil, fmt.Errorf("%w: reopening periods requires the reopen permission", apperrors.ErrForbidden)
	}

	period, err := s.periodRepo.FindPeriodByMonth(ctx, req.Year, req.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", req.Year, int(req.Month), err)
	}
	switch period.Status {
	case domain.PeriodOpen:
		return nil, fmt.Errorf("%w: period %s is already open", apperrors.ErrValidation, period.Label())
	case domain.PeriodLocked:
		return nil, fmt.Errorf("%w: period %s is locked and cannot be reopened", apperrors.ErrImmutableRecord, period.Label())
	}

	now := s.clock.Now()

	// Void the closing entry so balances return to their pre-close state.
	entries, err := s.entryRepo.ListEntriesByPeriod(ctx, period.PeriodID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for reopening: %w", err)
	}
	voidedCount := 0
	voidedDebit := decimal.Zero
	voidedCredit := decimal.Zero
	for _, e := range entries {
		if e.Type != domain.EntryClosing {
			continue
		}
		if err := s.entryRepo.MarkVoided(ctx, e.EntryID, actor.ActorID, "period reopened: "+req.Justification, now); err != nil {
			return nil, fmt.Errorf("failed to void closing entry %d: %w", e.Sequence, err)
		}
		voidedCount++
		voidedDebit = voidedDebit.Add(e.TotalDebit)
		voidedCredit = voidedCredit.Add(e.TotalCredit)
	}

	reopened := *period
	reopened.Status = domain.PeriodOpen
	reopened.ClosedAt = nil
	reopened.ClosedBy = ""
	reopened.ClosingHash = ""
	// The sealed stats included the closing entry; back it out.
	reopened.EntryCount = period.EntryCount - voidedCount
	reopened.TotalDebit = period.TotalDebit.Sub(voidedDebit)
	reopened.TotalCredit = period.TotalCredit.Sub(voidedCredit)
	reopened.LastUpdatedAt = now
	reopened.LastUpdatedBy = actor.ActorID
	if err := s.periodRepo.UpdatePeriod(ctx, reopened); err != nil {
		return nil, fmt.Errorf("failed to reopen period %s: %w", period.Label(), err)
	}

	logger.Warn("period reopened",
		slog.String("period", reopened.Label()),
		slog.String("actor_id", actor.ActorID),
		slog.String("justification", req.Justification))

	s.recordPeriodAudit(ctx, domain.AuditPeriodReopened, reopened, actor, meta, map[string]any{
		"justification": req.Justification,
		"previous_seal": period.ClosingHash,
	})
	return &reopened, nil
}

// LockPeriod makes a CLOSED period permanently immutable.
func (s *periodService) LockPeriod(ctx context.Context, year int, month time.Month, actor domain.Actor, meta domain.RequestMeta) (*domain.Period, error) {
	if !actor.HasPermission(domain.PermClosePeriods) {
		return nil, fmt.Errorf("%w: locking periods requires the close permission", apperrors.ErrForbidden)
	}

	period, err := s.periodRepo.FindPeriodByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", year, int(month), err)
	}
	if period.Status != domain.PeriodClosed {
		return nil, fmt.Errorf("%w: only closed periods can be locked, %s is %s", apperrors.ErrValidation, period.Label(), period.Status)
	}

	now := s.clock.Now()
	locked := *period
	locked.Status = domain.PeriodLocked
	locked.LastUpdatedAt = now
	locked.LastUpdatedBy = actor.ActorID
	if err := s.periodRepo.UpdatePeriod(ctx, locked); err != nil {
		return nil, fmt.Errorf("failed to lock period %s: %w", period.Label(), err)
	}

	s.recordPeriodAudit(ctx, domain.AuditPeriodLocked, locked, actor, meta, nil)
	return &locked, nil
}

// ComputeResult aggregates the period's result balances without mutating
// anything, for previewing a close.
func (s *periodService) ComputeResult(ctx context.Context, year int, month time.Month) (*domain.PeriodResult, error) {
	period, err := s.periodRepo.FindPeriodByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", year, int(month), err)
	}
	entries, err := s.entryRepo.ListEntriesByPeriod(ctx, period.PeriodID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	result, _, err := s.computeResult(ctx, entries)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *periodService) recordPeriodAudit(ctx context.Context, kind domain.AuditEventKind, period domain.Period, actor domain.Actor, meta domain.RequestMeta, detail map[string]any) {
	if detail == nil {
		detail = map[string]any{}
	}
	detail["period"] = period.Label()
	detail["status"] = string(period.Status)

	err := s.auditSvc.Record(ctx, domain.AuditLog{
		Kind:      kind,
		ActorID:   actor.ActorID,
		ActorName: actor.Name,
		SourceIP:  meta.SourceIP,
		UserAgent: meta.UserAgent,
		Endpoint:  meta.Endpoint,
		Method:    meta.Method,
		PeriodID:  period.PeriodID,
		Detail:    detail,
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to record period audit event",
			slog.String("kind", string(kind)),
			slog.String("period", period.Label()),
			slog.String("error", err.Error()))
	}
}
