package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

// sequenceWarnPercent is the counter usage percentage at which the notifier
// starts warning about exhaustion.
const sequenceWarnPercent = 95

// entryService posts, amends and voids journal entries.
type entryService struct {
	entryRepo   portsrepo.EntryRepositoryWithTx
	counterRepo portsrepo.CounterRepository
	accountRepo portsrepo.AccountReader
	periodRepo  portsrepo.PeriodRepositoryFacade
	periodSvc   portssvc.PeriodWriterSvc
	auditSvc    portssvc.AuditRecorderSvc
	chain       *validation.Chain
	dryChain    *validation.Chain
	clock       portssvc.Clock
	notifier    portssvc.Notifier
	validate    *validator.Validate

	counterName  string
	counterLimit int64
}

// NewEntryService creates a new entry service. The chain records anomalies for
// real posting attempts; the dry chain, used by ValidateEntry, does not.
func NewEntryService(
	repos portsrepo.RepositoryProvider,
	periodSvc portssvc.PeriodWriterSvc,
	auditSvc portssvc.AuditRecorderSvc,
	chain *validation.Chain,
	dryChain *validation.Chain,
	clock portssvc.Clock,
	notifier portssvc.Notifier,
	validate *validator.Validate,
	counterName string,
	counterLimit int64,
) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:    repos.EntryRepo,
		counterRepo:  repos.CounterRepo,
		accountRepo:  repos.AccountRepo,
		periodRepo:   repos.PeriodRepo,
		periodSvc:    periodSvc,
		auditSvc:     auditSvc,
		chain:        chain,
		dryChain:     dryChain,
		clock:        clock,
		notifier:     notifier,
		validate:     validate,
		counterName:  counterName,
		counterLimit: counterLimit,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// resolveLines turns request lines into domain lines with derived totals and
// resolved account ids. Unknown account codes are left unresolved so the rule
// chain can report them instead of the service failing fast.
func (s *entryService) resolveLines(ctx context.Context, entryID string, reqLines []dto.CreateEntryLine, actorID string) ([]domain.EntryLine, decimal.Decimal, decimal.Decimal) {
	logger := logging.FromContext(ctx)
	now := s.clock.Now()

	codes := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		codes = append(codes, l.AccountCode)
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		// The accounts rule re-reads per code and will report the failure.
		logger.Warn("account prefetch failed, deferring to validation", slog.String("error", err.Error()))
		accounts = map[string]domain.Account{}
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	lines := make([]domain.EntryLine, len(reqLines))
	for i, l := range reqLines {
		line := domain.EntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: l.AccountCode,
			LineIndex:   i + 1,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			CostCenter:  l.CostCenter,
			PartyTaxID:  l.PartyTaxID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if acc, ok := accounts[l.AccountCode]; ok {
			line.AccountID = acc.AccountID
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
		lines[i] = line
	}
	return lines, totalDebit, totalCredit
}

// stampHashes computes and sets every line hash plus the entry integrity hash.
func stampHashes(entry *domain.JournalEntry) error {
	for i := range entry.Lines {
		lh, err := hashing.LineHash(entry.Sequence, entry.Lines[i])
		if err != nil {
			return fmt.Errorf("failed to hash line %d: %w", entry.Lines[i].LineIndex, err)
		}
		entry.Lines[i].LineHash = lh
	}
	eh, err := hashing.EntryHash(*entry, entry.Lines)
	if err != nil {
		return fmt.Errorf("failed to hash entry: %w", err)
	}
	entry.IntegrityHash = eh
	return nil
}

// CreateEntry validates and posts a new journal entry. Sequence allocation,
// validation and persistence happen inside one database transaction so a
// rejected candidate never burns a sequence number.
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	now := s.clock.Now()
	entryID := uuid.NewString()
	lines, totalDebit, totalCredit := s.resolveLines(ctx, entryID, req.Lines, actor.ActorID)

	entry := domain.JournalEntry{
		EntryID:       entryID,
		EntryDate:     req.EntryDate,
		Type:          req.Type,
		SourceDocType: req.SourceDocType,
		SourceDocRef:  req.SourceDocRef,
		PartyTaxID:    validation.CleanTaxID(req.PartyTaxID),
		PartyName:     req.PartyName,
		Description:   req.Description,
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		Difference:    totalDebit.Sub(totalCredit),
		SourceIP:      meta.SourceIP,
		UserAgent:     meta.UserAgent,
		Status:        domain.EntryActive,
		SealedAt:      now,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ActorID,
		},
	}
	if req.AsDraft {
		entry.Status = domain.EntryDraft
	}

	// Make sure the owning period exists before posting into it.
	period, err := s.periodSvc.EnsurePeriod(ctx, req.EntryDate, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve period: %w", err)
	}
	entry.PeriodID = period.PeriodID

	tx, err := s.entryRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.entryRepo.Rollback(ctx, tx) }()

	sequence, err := s.counterRepo.NextSequence(ctx, tx, s.counterName)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	entry.Sequence = sequence

	result := s.chain.Validate(ctx, entry, validation.Context{
		Actor: actor,
		Meta:  meta,
		Mode:  validation.ModeCreate,
	})
	if !result.Valid() {
		blocking := result.Blocking()
		logger.Warn("entry candidate rejected",
			slog.Int64("sequence", sequence),
			slog.Int("blocking_findings", len(blocking)))
		return nil, validationError(blocking)
	}

	if err := stampHashes(&entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.SaveEntryInTx(ctx, tx, entry); err != nil {
		logger.Error("failed to save entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	if err := s.entryRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	logger.Info("entry posted",
		slog.Int64("sequence", entry.Sequence),
		slog.String("entry_id", entry.EntryID),
		slog.String("type", string(entry.Type)),
		slog.String("total", entry.TotalDebit.StringFixed(2)))

	// The ledger write already committed; audit and bookkeeping failures are
	// logged, never surfaced.
	s.recordEntryAudit(ctx, domain.AuditEntryCreated, entry, actor, meta, "")
	if entry.Status == domain.EntryActive {
		s.bumpPeriodStats(ctx, period.PeriodID, 1, entry.TotalDebit, entry.TotalCredit)
	}
	s.warnOnSequencePressure(ctx, sequence)

	return &entry, nil
}

// UpdateDraftEntry replaces the content of a DRAFT entry after re-validation.
// Posted entries are immutable; correcting one takes a void plus a new entry.
func (s *entryService) UpdateDraftEntry(ctx context.Context, entryID string, req dto.UpdateDraftEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	existing, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %s: %w", entryID, err)
	}
	if existing.Status != domain.EntryDraft {
		return nil, fmt.Errorf("%w: only draft entries can be updated", apperrors.ErrImmutableRecord)
	}
	period, err := s.periodForDate(ctx, existing.EntryDate)
	if err != nil {
		return nil, err
	}
	if ok, reason := existing.CanModify(period); !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrImmutableRecord, reason)
	}

	now := s.clock.Now()
	lines, totalDebit, totalCredit := s.resolveLines(ctx, existing.EntryID, req.Lines, actor.ActorID)

	updated := *existing
	updated.EntryDate = req.EntryDate
	updated.Type = req.Type
	updated.Description = req.Description
	updated.PartyTaxID = validation.CleanTaxID(req.PartyTaxID)
	updated.PartyName = req.PartyName
	updated.TotalDebit = totalDebit
	updated.TotalCredit = totalCredit
	updated.Difference = totalDebit.Sub(totalCredit)
	updated.Lines = lines
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.ActorID

	result := s.chain.Validate(ctx, updated, validation.Context{
		Actor:   actor,
		Meta:    meta,
		Mode:    validation.ModeModify,
		EntryID: existing.EntryID,
	})
	if !result.Valid() {
		return nil, validationError(result.Blocking())
	}

	if req.Post {
		updated.Status = domain.EntryActive
		updated.SealedAt = now
	}
	if err := stampHashes(&updated); err != nil {
		return nil, err
	}

	if err := s.entryRepo.UpdateDraftEntry(ctx, updated); err != nil {
		logger.Error("failed to update draft entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update draft entry: %w", err)
	}

	s.recordEntryAudit(ctx, domain.AuditEntryModified, updated, actor, meta, "")
	if req.Post {
		s.bumpPeriodStats(ctx, updated.PeriodID, 1, updated.TotalDebit, updated.TotalCredit)
	}
	return &updated, nil
}

// VoidEntry marks an entry as voided. The entry keeps its sequence number and
// content forever; only the status changes.
func (s *entryService) VoidEntry(ctx context.Context, entryID string, req dto.VoidEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if !actor.HasPermission(domain.PermVoidEntries) {
		return nil, fmt.Errorf("%w: voiding entries requires the void permission", apperrors.ErrForbidden)
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %s: %w", entryID, err)
	}
	if entry.Status == domain.EntryVoided {
		return nil, fmt.Errorf("%w: entry %d is already voided", apperrors.ErrEntryVoided, entry.Sequence)
	}
	if entry.Type == domain.EntryClosing {
		return nil, fmt.Errorf("%w: closing entries are voided only by reopening their period", apperrors.ErrImmutableRecord)
	}

	period, err := s.periodForDate(ctx, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if period != nil && period.Status != domain.PeriodOpen {
		s.recordEntryAudit(ctx, domain.AuditClosedPeriodWrite, *entry, actor, meta,
			fmt.Sprintf("void attempt on entry %d in %s period %s", entry.Sequence, period.Status, period.Label()))
		return nil, fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodClosed, period.Label(), period.Status)
	}

	now := s.clock.Now()
	if err := s.entryRepo.MarkVoided(ctx, entryID, actor.ActorID, req.Reason, now); err != nil {
		logger.Error("failed to void entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to void entry: %w", err)
	}

	wasActive := entry.Status == domain.EntryActive
	entry.Status = domain.EntryVoided
	entry.VoidedAt = &now
	entry.VoidedBy = actor.ActorID
	entry.VoidReason = req.Reason

	s.recordEntryAudit(ctx, domain.AuditEntryVoided, *entry, actor, meta, req.Reason)
	if wasActive {
		s.bumpPeriodStats(ctx, entry.PeriodID, -1, entry.TotalDebit.Neg(), entry.TotalCredit.Neg())
	}

	logger.Info("entry voided",
		slog.Int64("sequence", entry.Sequence),
		slog.String("entry_id", entry.EntryID),
		slog.String("voided_by", actor.ActorID))
	return entry, nil
}

// ValidateEntry runs the full rule chain as a dry run and returns every
// finding. Nothing is persisted and no anomaly is recorded.
func (s *entryService) ValidateEntry(ctx context.Context, req dto.CreateEntryRequest, actor domain.Actor, meta domain.RequestMeta) (validation.Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return validation.Result{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	entryID := uuid.NewString()
	lines, totalDebit, totalCredit := s.resolveLines(ctx, entryID, req.Lines, actor.ActorID)

	maxSeq, err := s.entryRepo.MaxSequence(ctx)
	if err != nil {
		return validation.Result{}, fmt.Errorf("failed to read max sequence: %w", err)
	}

	candidate := domain.JournalEntry{
		EntryID:     entryID,
		Sequence:    maxSeq + 1,
		EntryDate:   req.EntryDate,
		Type:        req.Type,
		PartyTaxID:  validation.CleanTaxID(req.PartyTaxID),
		PartyName:   req.PartyName,
		Description: req.Description,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Difference:  totalDebit.Sub(totalCredit),
		Status:      domain.EntryActive,
		Lines:       lines,
	}

	return s.dryChain.Validate(ctx, candidate, validation.Context{
		Actor: actor,
		Meta:  meta,
		Mode:  validation.ModeCreate,
	}), nil
}

// GetEntryByID retrieves a specific entry, with its lines, by its ID.
func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetEntryBySequence retrieves an entry by its global sequence number.
func (s *entryService) GetEntryBySequence(ctx context.Context, sequence int64) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryBySequence(ctx, sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry with sequence %d: %w", sequence, err)
	}
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, newest first.
func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	entries, err := s.entryRepo.ListEntries(ctx, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// periodForDate resolves the owning period, mapping "no period yet" to nil.
func (s *entryService) periodForDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, date)
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve period for date %s: %w", date.Format(time.DateOnly), err)
	}
	return period, nil
}

func (s *entryService) recordEntryAudit(ctx context.Context, kind domain.AuditEventKind, entry domain.JournalEntry, actor domain.Actor, meta domain.RequestMeta, message string) {
	logger := logging.FromContext(ctx)
	err := s.auditSvc.Record(ctx, domain.AuditLog{
		Kind:      kind,
		ActorID:   actor.ActorID,
		ActorName: actor.Name,
		SourceIP:  meta.SourceIP,
		UserAgent: meta.UserAgent,
		Endpoint:  meta.Endpoint,
		Method:    meta.Method,
		EntryID:   entry.EntryID,
		PeriodID:  entry.PeriodID,
		Message:   message,
		Detail: map[string]any{
			"sequence":       entry.Sequence,
			"entry_type":     string(entry.Type),
			"status":         string(entry.Status),
			"total_debit":    entry.TotalDebit.StringFixed(2),
			"total_credit":   entry.TotalCredit.StringFixed(2),
			"integrity_hash": entry.IntegrityHash,
		},
	})
	if err != nil {
		// Availability beats audit completeness for the write path; the
		// failure itself still lands in the operational log.
		logger.Error("failed to record entry audit event",
			slog.String("kind", string(kind)),
			slog.Int64("sequence", entry.Sequence),
			slog.String("error", err.Error()))
	}
}

// bumpPeriodStats adjusts the owning period's counters after a committed
// ledger write. Failures are logged and left for the next recount.
func (s *entryService) bumpPeriodStats(ctx context.Context, periodID string, countDelta int, debitDelta, creditDelta decimal.Decimal) {
	logger := logging.FromContext(ctx)
	if periodID == "" {
		return
	}
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		logger.Error("failed to load period for stats update", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return
	}
	period.EntryCount += countDelta
	period.TotalDebit = period.TotalDebit.Add(debitDelta)
	period.TotalCredit = period.TotalCredit.Add(creditDelta)
	if err := s.periodRepo.UpdatePeriod(ctx, *period); err != nil {
		logger.Error("failed to update period stats", slog.String("period_id", periodID), slog.String("error", err.Error()))
	}
}

// warnOnSequencePressure notifies when counter usage crosses the warning
// threshold.
func (s *entryService) warnOnSequencePressure(ctx context.Context, sequence int64) {
	if s.counterLimit <= 0 || s.notifier == nil {
		return
	}
	if sequence*100 < s.counterLimit*sequenceWarnPercent {
		return
	}
	if err := s.notifier.NotifySequenceNearingLimit(ctx, s.counterName, sequence, s.counterLimit); err != nil {
		logging.FromContext(ctx).Error("failed to notify sequence pressure", slog.String("error", err.Error()))
	}
}

// validationError folds blocking findings into one typed error for callers
// that do not want the full report.
func validationError(blocking []validation.Finding) error {
	msgs := make([]string, 0, len(blocking))
	for _, f := range blocking {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Rule, f.Message))
	}
	return fmt.Errorf("%w: %d rule(s) blocked the entry: %v", apperrors.ErrValidation, len(blocking), msgs)
}

// errIsNotFound is a small helper kept close to its only callers.
func errIsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
