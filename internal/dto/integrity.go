package dto

// EntryVerification reports the outcome of recomputing one entry's hashes.
type EntryVerification struct {
	EntryID        string `json:"entryID"`
	Sequence       int64  `json:"sequence"`
	Valid          bool   `json:"valid"`
	ExpectedHash   string `json:"expectedHash"`
	RecomputedHash string `json:"recomputedHash"`
	// TamperedLines lists the indexes of lines whose stored hash no longer
	// matches, narrowing where the modification happened.
	TamperedLines []int `json:"tamperedLines,omitempty"`
}

// PeriodIntegrityReport aggregates entry verification across one period.
type PeriodIntegrityReport struct {
	PeriodID       string              `json:"periodID"`
	Label          string              `json:"label"`
	EntriesChecked int                 `json:"entriesChecked"`
	MerkleRoot     string              `json:"merkleRoot"`
	SealedRoot     string              `json:"sealedRoot,omitempty"`
	RootMatches    bool                `json:"rootMatches"`
	Discrepancies  []EntryVerification `json:"discrepancies,omitempty"`
}

// Clean reports whether the period passed verification entirely.
func (r *PeriodIntegrityReport) Clean() bool {
	return len(r.Discrepancies) == 0 && r.RootMatches
}
