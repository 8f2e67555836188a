package services

import (
	"context"
	"time"

	"github.com/openbooks/ledgercore/internal/dto"
)

// IntegritySvc recomputes stored hashes and reports tampering. Verification
// never mutates ledger data; discrepancies surface through audit records and
// the notifier.
type IntegritySvc interface {
	// VerifyEntry recomputes one entry's hash and compares it to the stored value.
	VerifyEntry(ctx context.Context, entryID string) (*dto.EntryVerification, error)

	// VerifyPeriod recomputes every entry hash in the period plus the Merkle
	// root, comparing the root against the closing seal when one exists.
	VerifyPeriod(ctx context.Context, year int, month time.Month) (*dto.PeriodIntegrityReport, error)

	// SweepOpenPeriods verifies every open period once. Used by the
	// background integrity loop.
	SweepOpenPeriods(ctx context.Context) error
}
