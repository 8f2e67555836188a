package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openbooks/ledgercore/internal/core/domain"
)

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry, with its lines, by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySequence retrieves an entry, with its lines, by its global sequence number.
	FindEntryBySequence(ctx context.Context, sequence int64) (*domain.JournalEntry, error)

	// FindEntryIDBySequence resolves a sequence number to the owning entry id.
	FindEntryIDBySequence(ctx context.Context, sequence int64) (string, error)

	// MaxSequence returns the highest sequence number ever assigned, 0 when the
	// ledger is empty. Voided entries keep their number.
	MaxSequence(ctx context.Context) (int64, error)

	// ListEntriesByPeriod retrieves the entries of a period ordered by sequence.
	// With includeAll false only ACTIVE entries are returned; drafts and voided
	// entries never reach result computation or sealing.
	ListEntriesByPeriod(ctx context.Context, periodID string, includeAll bool) ([]domain.JournalEntry, error)

	// ListEntriesByDateRange retrieves entries whose date falls in [from, to],
	// ordered by sequence. includeAll behaves as in ListEntriesByPeriod.
	ListEntriesByDateRange(ctx context.Context, from time.Time, to time.Time, includeAll bool) ([]domain.JournalEntry, error)

	// CountDraftEntries counts the DRAFT entries still parked in a period.
	CountDraftEntries(ctx context.Context, periodID string) (int, error)

	// ListEntries retrieves a paginated list of entries ordered by sequence descending.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)
}

// EntryWriter defines write operations for journal entry data. There is no
// delete operation: posted entries leave the ledger only by voiding.
type EntryWriter interface {
	// SaveEntryInTx persists an entry and its lines within the given transaction.
	// The caller allocates the sequence number in the same transaction.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// UpdateDraftEntry replaces the mutable fields and lines of a DRAFT entry.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkVoided flags an entry as voided, recording who, when and why.
	MarkVoided(ctx context.Context, entryID string, voidedBy string, reason string, now time.Time) error

	// SealEntries stamps the given entries with their period and seal time
	// when the period closes.
	SealEntries(ctx context.Context, tx pgx.Tx, entryIDs []string, periodID string, sealedAt time.Time) error
}

// CounterRepository manages named monotonic counters. NextSequence must be
// called inside a transaction so the row lock serializes concurrent writers.
type CounterRepository interface {
	// NextSequence locks the counter row, increments it and returns the new value.
	// Returns apperrors.ErrSequenceExhausted when the counter hit its ceiling.
	NextSequence(ctx context.Context, tx pgx.Tx, name string) (int64, error)

	// CurrentSequence returns the counter's last assigned value without locking.
	CurrentSequence(ctx context.Context, name string) (int64, error)
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
