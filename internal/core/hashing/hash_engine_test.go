package hashing_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/core/hashing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func sampleEntry() (domain.JournalEntry, []domain.EntryLine) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	entry := domain.JournalEntry{
		EntryID:     "e-1",
		Sequence:    1,
		EntryDate:   date,
		Type:        domain.EntrySale,
		Description: "Cash sale of merchandise",
		TotalDebit:  decimal.NewFromFloat(1000.00),
		TotalCredit: decimal.NewFromFloat(1000.00),
	}
	lines := []domain.EntryLine{
		{
			LineID: "l-1", EntryID: "e-1", AccountCode: "11050501", LineIndex: 1,
			Debit: decimal.NewFromFloat(1000.00), Credit: decimal.Zero,
			Description: "Cash received",
		},
		{
			LineID: "l-2", EntryID: "e-1", AccountCode: "41350101", LineIndex: 2,
			Debit: decimal.Zero, Credit: decimal.NewFromFloat(1000.00),
			Description: "Merchandise revenue",
		},
	}
	return entry, lines
}

func TestEntryHashDeterminism(t *testing.T) {
	entry, lines := sampleEntry()

	h1, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)
	h2, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Regexp(t, hexHash, h1)
}

func TestEntryHashIgnoresPhysicalLineOrder(t *testing.T) {
	entry, lines := sampleEntry()

	h1, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)

	reversed := []domain.EntryLine{lines[1], lines[0]}
	h2, err := hashing.EntryHash(entry, reversed)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "hash must depend on the line index, not fetch order")
}

func TestEntryHashSensitivity(t *testing.T) {
	entry, lines := sampleEntry()
	base, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)

	t.Run("single cent change", func(t *testing.T) {
		mutated := append([]domain.EntryLine(nil), lines...)
		mutated[0].Debit = decimal.NewFromFloat(1000.01)
		h, err := hashing.EntryHash(entry, mutated)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("description change", func(t *testing.T) {
		changed := entry
		changed.Description = "Cash sale of merchandise."
		h, err := hashing.EntryHash(changed, lines)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("account change", func(t *testing.T) {
		mutated := append([]domain.EntryLine(nil), lines...)
		mutated[1].AccountCode = "41350102"
		h, err := hashing.EntryHash(entry, mutated)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})
}

func TestEntryHashDateRepresentation(t *testing.T) {
	entry, lines := sampleEntry()
	base, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)

	// Same calendar date built in a non-UTC zone at local midnight-equivalent
	// of UTC must hash identically once normalized.
	shifted := entry
	shifted.EntryDate = entry.EntryDate.In(time.FixedZone("west", -5*3600))
	h, err := hashing.EntryHash(shifted, lines)
	require.NoError(t, err)
	assert.Equal(t, base, h)
}

func TestLineHash(t *testing.T) {
	_, lines := sampleEntry()

	h1, err := hashing.LineHash(1, lines[0])
	require.NoError(t, err)
	assert.Regexp(t, hexHash, h1)

	h2, err := hashing.LineHash(1, lines[0])
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	other, err := hashing.LineHash(2, lines[0])
	require.NoError(t, err)
	assert.NotEqual(t, h1, other, "owning sequence participates in the line hash")
}

func TestSaltedLineHashNeverStable(t *testing.T) {
	_, lines := sampleEntry()

	h1, err := hashing.SaltedLineHash(1, lines[0])
	require.NoError(t, err)
	h2, err := hashing.SaltedLineHash(1, lines[0])
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)

	plain, err := hashing.LineHash(1, lines[0])
	require.NoError(t, err)
	assert.NotEqual(t, plain, h1, "salted hashes must not collide with stored integrity values")
}

func TestVerifyEntry(t *testing.T) {
	entry, lines := sampleEntry()
	stored, err := hashing.EntryHash(entry, lines)
	require.NoError(t, err)

	ok, expected, recomputed, err := hashing.VerifyEntry(entry, lines, stored)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, expected, recomputed)

	tampered := entry
	tampered.Description = "Cash sale of merchandise (edited)"
	ok, _, recomputed, err = hashing.VerifyEntry(tampered, lines, stored)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEqual(t, stored, recomputed)
}

func TestBatchVerifyFlagsOnlyTamperedEntries(t *testing.T) {
	clean, cleanLines := sampleEntry()
	clean.Lines = cleanLines
	var err error
	clean.IntegrityHash, err = hashing.EntryHash(clean, cleanLines)
	require.NoError(t, err)

	tampered, tamperedLines := sampleEntry()
	tampered.EntryID = "e-2"
	tampered.Sequence = 2
	tampered.Lines = tamperedLines
	tampered.IntegrityHash, err = hashing.EntryHash(tampered, tamperedLines)
	require.NoError(t, err)
	// Out-of-band description edit after the hash was stored.
	tampered.Description = "Cash sale of merchandise, amended"

	discrepancies, err := hashing.BatchVerify([]domain.JournalEntry{clean, tampered})
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, "e-2", discrepancies[0].EntryID)
	assert.Equal(t, int64(2), discrepancies[0].Sequence)
	assert.Equal(t, tampered.IntegrityHash, discrepancies[0].Expected)
	assert.NotEqual(t, discrepancies[0].Expected, discrepancies[0].Recomputed)
}
