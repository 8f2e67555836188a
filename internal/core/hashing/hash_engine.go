package hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/openbooks/ledgercore/internal/core/domain"
)

// EntryHash computes the SHA-256 hex digest of an entry and its lines.
// Lines are ordered by their explicit line index, never by physical fetch
// order, so identical logical content always produces the identical hash.
func EntryHash(entry domain.JournalEntry, lines []domain.EntryLine) (string, error) {
	ordered := make([]domain.EntryLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].LineIndex < ordered[j].LineIndex })

	lineData := make([]map[string]any, len(ordered))
	for i, l := range ordered {
		lineData[i] = map[string]any{
			"account_code": l.AccountCode,
			"order":        l.LineIndex,
			"debit":        l.Debit,
			"credit":       l.Credit,
			"description":  l.Description,
		}
	}

	payload := map[string]any{
		"sequence":     entry.Sequence,
		"date":         entry.EntryDate,
		"type":         string(entry.Type),
		"description":  entry.Description,
		"total_debit":  entry.TotalDebit,
		"total_credit": entry.TotalCredit,
		"lines":        lineData,
	}

	b, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("entry %d: %w", entry.Sequence, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// LineHash computes the SHA-256 hex digest of a single entry line.
func LineHash(entrySequence int64, line domain.EntryLine) (string, error) {
	payload := map[string]any{
		"entry_sequence": entrySequence,
		"account_code":   line.AccountCode,
		"order":          line.LineIndex,
		"debit":          line.Debit,
		"credit":         line.Credit,
		"description":    line.Description,
		"cost_center":    line.CostCenter,
		"counterparty":   line.PartyTaxID,
	}
	b, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("line %d of entry %d: %w", line.LineIndex, entrySequence, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SaltedLineHash is the display-only variant of LineHash: a random nonce is
// mixed in so rendered hashes cannot be reversed via rainbow tables. The
// result is never comparable to a stored integrity value.
func SaltedLineHash(entrySequence int64, line domain.EntryLine) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate display nonce: %w", err)
	}
	payload := map[string]any{
		"entry_sequence": entrySequence,
		"account_code":   line.AccountCode,
		"order":          line.LineIndex,
		"debit":          line.Debit,
		"credit":         line.Credit,
		"description":    line.Description,
		"cost_center":    line.CostCenter,
		"counterparty":   line.PartyTaxID,
		"_nonce":         hex.EncodeToString(nonce),
	}
	b, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyEntry recomputes the entry hash and compares it against the stored
// value. It returns the comparison outcome together with both hashes so
// callers can report the discrepancy verbatim.
func VerifyEntry(entry domain.JournalEntry, lines []domain.EntryLine, expected string) (bool, string, string, error) {
	recomputed, err := EntryHash(entry, lines)
	if err != nil {
		return false, expected, "", err
	}
	return expected == recomputed, expected, recomputed, nil
}

// Discrepancy describes one stored-vs-recomputed hash mismatch.
type Discrepancy struct {
	EntryID    string    `json:"entryID"`
	Sequence   int64     `json:"sequence"`
	EntryDate  time.Time `json:"entryDate"`
	Expected   string    `json:"expected"`
	Recomputed string    `json:"recomputed"`
}

// BatchVerify scans a collection of entries (each carrying its lines) and
// returns every hash discrepancy found. A clean collection yields an empty
// slice.
func BatchVerify(entries []domain.JournalEntry) ([]Discrepancy, error) {
	var discrepancies []Discrepancy
	for _, entry := range entries {
		ok, expected, recomputed, err := VerifyEntry(entry, entry.Lines, entry.IntegrityHash)
		if err != nil {
			return nil, fmt.Errorf("verifying entry %d: %w", entry.Sequence, err)
		}
		if !ok {
			discrepancies = append(discrepancies, Discrepancy{
				EntryID:    entry.EntryID,
				Sequence:   entry.Sequence,
				EntryDate:  entry.EntryDate,
				Expected:   expected,
				Recomputed: recomputed,
			})
		}
	}
	return discrepancies, nil
}
