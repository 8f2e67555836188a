package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/models"
	"github.com/openbooks/ledgercore/internal/utils/mapping"
)

const entryColumns = `entry_id, sequence, entry_date, type, source_doc_type, source_doc_ref,
	party_tax_id, party_name, description, total_debit, total_credit, difference,
	integrity_hash, source_ip, user_agent, status, voided_at, COALESCE(voided_by, ''),
	COALESCE(void_reason, ''), COALESCE(period_id::text, ''), sealed_at,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, account_code, line_index, debit, credit,
	description, cost_center, party_tax_id, line_hash,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID, &m.Sequence, &m.EntryDate, &m.Type, &m.SourceDocType, &m.SourceDocRef,
		&m.PartyTaxID, &m.PartyName, &m.Description, &m.TotalDebit, &m.TotalCredit, &m.Difference,
		&m.IntegrityHash, &m.SourceIP, &m.UserAgent, &m.Status, &m.VoidedAt, &m.VoidedBy,
		&m.VoidReason, &m.PeriodID, &m.SealedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return &m, nil
}

// loadLines fetches the lines of one entry ordered by line index.
func (r *PgxEntryRepository) loadLines(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM entry_lines WHERE entry_id = $1 ORDER BY line_index;`, lineColumns)
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of entry %s: %w", entryID, err)
	}
	defer rows.Close()

	var lines []models.EntryLine
	for rows.Next() {
		var m models.EntryLine
		err := rows.Scan(
			&m.LineID, &m.EntryID, &m.AccountID, &m.AccountCode, &m.LineIndex, &m.Debit, &m.Credit,
			&m.Description, &m.CostCenter, &m.PartyTaxID, &m.LineHash,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry line: %w", err)
		}
		lines = append(lines, m)
	}
	return mapping.ToDomainEntryLineSlice(lines), rows.Err()
}

// loadLinesForEntries fetches the lines of many entries in one query, grouped
// by entry id and ordered by line index.
func (r *PgxEntryRepository) loadLinesForEntries(ctx context.Context, entryIDs []string) (map[string][]domain.EntryLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.EntryLine{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM entry_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_index;`, lineColumns)
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for %d entries: %w", len(entryIDs), err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.EntryLine)
	for rows.Next() {
		var m models.EntryLine
		err := rows.Scan(
			&m.LineID, &m.EntryID, &m.AccountID, &m.AccountCode, &m.LineIndex, &m.Debit, &m.Credit,
			&m.Description, &m.CostCenter, &m.PartyTaxID, &m.LineHash,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry line: %w", err)
		}
		grouped[m.EntryID] = append(grouped[m.EntryID], mapping.ToDomainEntryLine(m))
	}
	return grouped, rows.Err()
}

// FindEntryByID retrieves a specific entry, with its lines, by its identifier.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE entry_id = $1;`, entryColumns)
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainEntry(*m)
	entry.Lines, err = r.loadLines(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryBySequence retrieves an entry, with its lines, by sequence number.
func (r *PgxEntryRepository) FindEntryBySequence(ctx context.Context, sequence int64) (*domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE sequence = $1;`, entryColumns)
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, sequence))
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainEntry(*m)
	entry.Lines, err = r.loadLines(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryIDBySequence resolves a sequence number to the owning entry id.
func (r *PgxEntryRepository) FindEntryIDBySequence(ctx context.Context, sequence int64) (string, error) {
	var entryID string
	err := r.Pool.QueryRow(ctx, `SELECT entry_id FROM journal_entries WHERE sequence = $1;`, sequence).Scan(&entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve sequence %d: %w", sequence, err)
	}
	return entryID, nil
}

// MaxSequence returns the highest sequence number ever assigned, 0 for an
// empty ledger. Voided entries keep their number and count.
func (r *PgxEntryRepository) MaxSequence(ctx context.Context) (int64, error) {
	var max int64
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) FROM journal_entries;`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max sequence: %w", err)
	}
	return max, nil
}

func (r *PgxEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	var ids []string
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, mapping.ToDomainEntry(*m))
		ids = append(ids, m.EntryID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := r.loadLinesForEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].EntryID]
	}
	return entries, nil
}

// ListEntriesByPeriod retrieves the entries of a period ordered by sequence.
// Unless includeAll is set, only ACTIVE entries qualify: drafts are not yet
// part of the ledger and voided entries have left it.
func (r *PgxEntryRepository) ListEntriesByPeriod(ctx context.Context, periodID string, includeAll bool) ([]domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE period_id = $1 AND ($2 OR status = 'ACTIVE') ORDER BY sequence;`, entryColumns)
	return r.queryEntries(ctx, query, periodID, includeAll)
}

// ListEntriesByDateRange retrieves entries dated within [from, to].
func (r *PgxEntryRepository) ListEntriesByDateRange(ctx context.Context, from time.Time, to time.Time, includeAll bool) ([]domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE entry_date BETWEEN $1 AND $2 AND ($3 OR status = 'ACTIVE') ORDER BY sequence;`, entryColumns)
	return r.queryEntries(ctx, query, from, to, includeAll)
}

// CountDraftEntries counts the DRAFT entries still parked in a period.
func (r *PgxEntryRepository) CountDraftEntries(ctx context.Context, periodID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE period_id = $1 AND status = 'DRAFT';`, periodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count draft entries of period %s: %w", periodID, err)
	}
	return count, nil
}

// ListEntries retrieves a paginated list of entries, newest first.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries ORDER BY sequence DESC LIMIT $1 OFFSET $2;`, entryColumns)
	return r.queryEntries(ctx, query, limit, offset)
}

// SaveEntryInTx persists an entry and its lines within the given transaction.
func (r *PgxEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelEntry(entry)

	entryQuery := `
		INSERT INTO journal_entries (entry_id, sequence, entry_date, type, source_doc_type, source_doc_ref,
			party_tax_id, party_name, description, total_debit, total_credit, difference,
			integrity_hash, source_ip, user_agent, status, voided_at, voided_by, void_reason,
			period_id, sealed_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, NULLIF($18, ''), NULLIF($19, ''), NULLIF($20, '')::uuid, $21, $22, $23, $24, $25);
	`
	_, err := tx.Exec(ctx, entryQuery,
		m.EntryID, m.Sequence, m.EntryDate, m.Type, m.SourceDocType, m.SourceDocRef,
		m.PartyTaxID, m.PartyName, m.Description, m.TotalDebit, m.TotalCredit, m.Difference,
		m.IntegrityHash, m.SourceIP, m.UserAgent, m.Status, m.VoidedAt, m.VoidedBy, m.VoidReason,
		m.PeriodID, m.SealedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sequence %d", apperrors.ErrSequenceConflict, entry.Sequence)
		}
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO entry_lines (line_id, entry_id, account_id, account_code, line_index, debit, credit,
			description, cost_center, party_tax_id, line_hash,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	for _, line := range entry.Lines {
		lm := mapping.ToModelEntryLine(line)
		batch.Queue(lineQuery,
			lm.LineID, lm.EntryID, lm.AccountID, lm.AccountCode, lm.LineIndex, lm.Debit, lm.Credit,
			lm.Description, lm.CostCenter, lm.PartyTaxID, lm.LineHash,
			lm.CreatedAt, lm.CreatedBy, lm.LastUpdatedAt, lm.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entry.Lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert lines of entry %s: %w", entry.EntryID, err)
		}
	}
	return nil
}

// UpdateDraftEntry replaces the mutable fields and lines of a DRAFT entry.
// The status guard in the WHERE clause backs up the service-level check.
func (r *PgxEntryRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE journal_entries
		SET entry_date = $2, type = $3, party_tax_id = $4, party_name = $5, description = $6,
			total_debit = $7, total_credit = $8, difference = $9, integrity_hash = $10,
			status = $11, sealed_at = $12, last_updated_at = $13, last_updated_by = $14
		WHERE entry_id = $1 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query,
		m.EntryID, m.EntryDate, m.Type, m.PartyTaxID, m.PartyName, m.Description,
		m.TotalDebit, m.TotalCredit, m.Difference, m.IntegrityHash,
		m.Status, m.SealedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrImmutableRecord, entry.EntryID)
	}

	// Draft lines are replaced wholesale.
	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to clear draft lines of %s: %w", entry.EntryID, err)
	}
	for _, line := range entry.Lines {
		lm := mapping.ToModelEntryLine(line)
		_, err := tx.Exec(ctx, `
			INSERT INTO entry_lines (line_id, entry_id, account_id, account_code, line_index, debit, credit,
				description, cost_center, party_tax_id, line_hash,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`,
			lm.LineID, lm.EntryID, lm.AccountID, lm.AccountCode, lm.LineIndex, lm.Debit, lm.Credit,
			lm.Description, lm.CostCenter, lm.PartyTaxID, lm.LineHash,
			lm.CreatedAt, lm.CreatedBy, lm.LastUpdatedAt, lm.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert draft line: %w", err)
		}
	}

	return r.Commit(ctx, tx)
}

// MarkVoided flags an entry as voided.
func (r *PgxEntryRepository) MarkVoided(ctx context.Context, entryID string, voidedBy string, reason string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'VOIDED', voided_at = $2, voided_by = $3, void_reason = $4,
			last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status <> 'VOIDED';
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, now, voidedBy, reason)
	if err != nil {
		return fmt.Errorf("failed to void entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrEntryVoided, entryID)
	}
	return nil
}

// SealEntries stamps the given entries with their period and seal time.
func (r *PgxEntryRepository) SealEntries(ctx context.Context, tx pgx.Tx, entryIDs []string, periodID string, sealedAt time.Time) error {
	if len(entryIDs) == 0 {
		return nil
	}
	query := `
		UPDATE journal_entries
		SET period_id = $2, sealed_at = $3
		WHERE entry_id = ANY($1);
	`
	if _, err := tx.Exec(ctx, query, entryIDs, periodID, sealedAt); err != nil {
		return fmt.Errorf("failed to seal %d entries: %w", len(entryIDs), err)
	}
	return nil
}
