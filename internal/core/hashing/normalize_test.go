package hashing_test

import (
	"testing"
	"time"

	"github.com/openbooks/ledgercore/internal/core/hashing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("decimals get two fraction digits", func(t *testing.T) {
		assert.Equal(t, "1000.00", hashing.Normalize(decimal.NewFromInt(1000)))
		assert.Equal(t, "0.10", hashing.Normalize(decimal.NewFromFloat(0.1)))
		assert.Equal(t, "-5.50", hashing.Normalize(decimal.NewFromFloat(-5.5)))
	})

	t.Run("nil becomes empty text", func(t *testing.T) {
		assert.Equal(t, "", hashing.Normalize(nil))
		var d *decimal.Decimal
		assert.Equal(t, "", hashing.Normalize(d))
	})

	t.Run("dates become ISO-8601", func(t *testing.T) {
		date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-03-15", hashing.Normalize(date))

		stamp := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, "2026-03-15T10:30:00Z", hashing.Normalize(stamp))
	})

	t.Run("structures normalize recursively", func(t *testing.T) {
		in := map[string]any{
			"amount": decimal.NewFromInt(42),
			"nested": []any{nil, decimal.NewFromFloat(1.5)},
		}
		out := hashing.Normalize(in).(map[string]any)
		assert.Equal(t, "42.00", out["amount"])
		assert.Equal(t, []any{"", "1.50"}, out["nested"])
	})
}
