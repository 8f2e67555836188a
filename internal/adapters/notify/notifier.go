// Package notify provides Notifier implementations. The default production
// notifier writes structured log records an alerting pipeline can pick up;
// NoopNotifier exists for tests and for deployments without alerting.
package notify

import (
	"context"
	"log/slog"

	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
)

// SlogNotifier emits alerts as error-level structured log records.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a notifier writing through the given logger. A nil
// logger falls back to slog.Default.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*SlogNotifier)(nil)

func (n *SlogNotifier) NotifyIntegrityBreach(ctx context.Context, periodLabel string, affectedEntries int) error {
	n.logger.ErrorContext(ctx, "ALERT: ledger integrity breach",
		slog.String("period", periodLabel),
		slog.Int("affected_entries", affectedEntries))
	return nil
}

func (n *SlogNotifier) NotifySequenceNearingLimit(ctx context.Context, counterName string, current int64, limit int64) error {
	n.logger.WarnContext(ctx, "ALERT: sequence counter nearing limit",
		slog.String("counter", counterName),
		slog.Int64("current", current),
		slog.Int64("limit", limit))
	return nil
}

// NoopNotifier drops every alert.
type NoopNotifier struct{}

var _ portssvc.Notifier = NoopNotifier{}

func (NoopNotifier) NotifyIntegrityBreach(context.Context, string, int) error { return nil }

func (NoopNotifier) NotifySequenceNearingLimit(context.Context, string, int64, int64) error {
	return nil
}
