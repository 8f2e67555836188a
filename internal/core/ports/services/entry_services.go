package services

import (
	"context"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry, with its lines, by its ID.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryBySequence retrieves an entry by its global sequence number.
	GetEntryBySequence(ctx context.Context, sequence int64) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries, newest first.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error)
}

// EntryWriterSvc defines write operations for journal entries
type EntryWriterSvc interface {
	// CreateEntry validates and posts a new entry: it allocates the next
	// sequence number, runs the full rule chain, computes the integrity
	// hashes and persists everything atomically.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error)

	// UpdateDraftEntry replaces the content of a DRAFT entry after re-validation.
	UpdateDraftEntry(ctx context.Context, entryID string, req dto.UpdateDraftEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error)

	// VoidEntry marks an entry as voided. The entry keeps its sequence number
	// and content; only the status changes.
	VoidEntry(ctx context.Context, entryID string, req dto.VoidEntryRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.JournalEntry, error)
}

// EntryValidatorSvc exposes the rule chain as a dry run, for callers that want
// the full findings report without posting anything.
type EntryValidatorSvc interface {
	// ValidateEntry runs every rule against the candidate and returns the
	// consolidated findings.
	ValidateEntry(ctx context.Context, req dto.CreateEntryRequest, actor domain.Actor, meta domain.RequestMeta) (validation.Result, error)
}

// EntrySvcFacade combines all entry-related service interfaces
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
	EntryValidatorSvc
}
