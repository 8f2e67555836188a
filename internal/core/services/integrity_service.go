package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/hashing"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/dto"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// integrityService recomputes stored hashes and raises the alarm on drift.
// It only ever reads ledger data; findings surface through the audit trail
// and the notifier.
type integrityService struct {
	entryRepo  portsrepo.EntryReader
	periodRepo portsrepo.PeriodReader
	auditSvc   portssvc.AuditRecorderSvc
	notifier   portssvc.Notifier
}

// NewIntegrityService creates a new integrity service.
func NewIntegrityService(
	entryRepo portsrepo.EntryReader,
	periodRepo portsrepo.PeriodReader,
	auditSvc portssvc.AuditRecorderSvc,
	notifier portssvc.Notifier,
) portssvc.IntegritySvc {
	return &integrityService{
		entryRepo:  entryRepo,
		periodRepo: periodRepo,
		auditSvc:   auditSvc,
		notifier:   notifier,
	}
}

var _ portssvc.IntegritySvc = (*integrityService)(nil)

// verifyOne recomputes one entry's hashes against the stored values.
func verifyOne(entry domain.JournalEntry) (dto.EntryVerification, error) {
	valid, expected, recomputed, err := hashing.VerifyEntry(entry, entry.Lines, entry.IntegrityHash)
	if err != nil {
		return dto.EntryVerification{}, fmt.Errorf("failed to verify entry %d: %w", entry.Sequence, err)
	}

	verification := dto.EntryVerification{
		EntryID:        entry.EntryID,
		Sequence:       entry.Sequence,
		Valid:          valid,
		ExpectedHash:   expected,
		RecomputedHash: recomputed,
	}
	for _, line := range entry.Lines {
		lh, err := hashing.LineHash(entry.Sequence, line)
		if err != nil {
			return dto.EntryVerification{}, fmt.Errorf("failed to verify line %d of entry %d: %w", line.LineIndex, entry.Sequence, err)
		}
		if line.LineHash != "" && lh != line.LineHash {
			verification.TamperedLines = append(verification.TamperedLines, line.LineIndex)
			verification.Valid = false
		}
	}
	return verification, nil
}

// VerifyEntry recomputes one entry's hash and compares it to the stored value.
func (s *integrityService) VerifyEntry(ctx context.Context, entryID string) (*dto.EntryVerification, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %s: %w", entryID, err)
	}

	verification, err := verifyOne(*entry)
	if err != nil {
		return nil, err
	}
	if !verification.Valid {
		s.recordMismatch(ctx, entry.PeriodID, []dto.EntryVerification{verification})
	}
	return &verification, nil
}

// VerifyPeriod recomputes every entry hash in the period plus the Merkle root,
// comparing the root against the closing seal when one exists.
func (s *integrityService) VerifyPeriod(ctx context.Context, year int, month time.Month) (*dto.PeriodIntegrityReport, error) {
	period, err := s.periodRepo.FindPeriodByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", year, int(month), err)
	}
	return s.verifyPeriod(ctx, period)
}

func (s *integrityService) verifyPeriod(ctx context.Context, period *domain.Period) (*dto.PeriodIntegrityReport, error) {
	logger := logging.FromContext(ctx)

	entries, err := s.entryRepo.ListEntriesByPeriod(ctx, period.PeriodID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of period %s: %w", period.Label(), err)
	}

	report := &dto.PeriodIntegrityReport{
		PeriodID:       period.PeriodID,
		Label:          period.Label(),
		EntriesChecked: len(entries),
	}

	leaves := make([]string, 0, len(entries))
	for _, e := range entries {
		verification, err := verifyOne(e)
		if err != nil {
			return nil, err
		}
		if !verification.Valid {
			report.Discrepancies = append(report.Discrepancies, verification)
		}
		leaves = append(leaves, e.IntegrityHash)
	}

	root, _ := hashing.BuildMerkle(leaves)
	report.MerkleRoot = root
	report.SealedRoot = period.ClosingHash
	// Open periods carry no seal yet; only a recorded seal can mismatch.
	report.RootMatches = period.ClosingHash == "" || period.ClosingHash == root

	if report.Clean() {
		logger.Debug("period verified clean",
			slog.String("period", period.Label()),
			slog.Int("entries", len(entries)))
		return report, nil
	}

	logger.Error("integrity breach detected",
		slog.String("period", period.Label()),
		slog.Int("tampered_entries", len(report.Discrepancies)),
		slog.Bool("root_matches", report.RootMatches))

	s.recordMismatch(ctx, period.PeriodID, report.Discrepancies)
	if s.notifier != nil {
		if err := s.notifier.NotifyIntegrityBreach(ctx, period.Label(), len(report.Discrepancies)); err != nil {
			logger.Error("failed to notify integrity breach", slog.String("error", err.Error()))
		}
	}
	return report, nil
}

// SweepOpenPeriods verifies every open period once. Mismatches are reported
// through audit and notifier; the returned error covers only read failures.
func (s *integrityService) SweepOpenPeriods(ctx context.Context) error {
	periods, err := s.periodRepo.ListOpenPeriods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open periods: %w", err)
	}

	var errs []error
	for i := range periods {
		if _, err := s.verifyPeriod(ctx, &periods[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// recordMismatch writes the HASH_MISMATCH audit record for a batch of
// discrepancies. Failures are logged; detection must not depend on the audit
// store being writable.
func (s *integrityService) recordMismatch(ctx context.Context, periodID string, discrepancies []dto.EntryVerification) {
	detail := make([]map[string]any, 0, len(discrepancies))
	for _, d := range discrepancies {
		detail = append(detail, map[string]any{
			"entry_id":        d.EntryID,
			"sequence":        d.Sequence,
			"expected_hash":   d.ExpectedHash,
			"recomputed_hash": d.RecomputedHash,
			"tampered_lines":  d.TamperedLines,
		})
	}
	err := s.auditSvc.Record(ctx, domain.AuditLog{
		Kind:     domain.AuditHashMismatch,
		Outcome:  domain.OutcomeFailure,
		Severity: domain.SeverityCritical,
		PeriodID: periodID,
		Message:  fmt.Sprintf("%d entries failed hash verification", len(discrepancies)),
		Detail:   map[string]any{"discrepancies": detail},
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to record hash mismatch", slog.String("error", err.Error()))
	}
}
