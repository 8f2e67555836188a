// Package hashing implements the deterministic integrity engine: canonical
// value normalization, SHA-256 entry and line hashes, and the per-period
// Merkle aggregation. Everything here is pure and safe to run concurrently.
package hashing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Normalize converts a value into its canonical hashable form: decimals become
// fixed two-fraction-digit text, times become ISO-8601 text, nil becomes the
// empty string, and maps/slices are normalized recursively. Canonical JSON
// marshalling then sorts map keys, so key order never affects a hash.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return t.StringFixed(2)
	case *decimal.Decimal:
		if t == nil {
			return ""
		}
		return t.StringFixed(2)
	case time.Time:
		return isoText(t)
	case *time.Time:
		if t == nil {
			return ""
		}
		return isoText(*t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// isoText renders midnight-UTC values as plain dates so that accounting dates
// hash identically however the caller constructed them.
func isoText(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format(time.DateOnly)
	}
	return u.Format(time.RFC3339)
}

// canonicalJSON marshals the normalized value. encoding/json writes map keys
// in sorted order, which is what makes the output canonical.
func canonicalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(Normalize(v))
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize value for hashing: %w", err)
	}
	return b, nil
}
