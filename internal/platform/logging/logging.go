// Package logging provides the operation-scoped slog logger carried through
// context.Context. The presentation layer (or main, for background work)
// attaches an enriched logger per operation; core code retrieves it without
// knowing who attached it.
package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is unexported to prevent collisions with other context users.
type contextKey string

const loggerKey = contextKey("logger")

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithOperation attaches a logger enriched with a fresh operation id and the
// operation name. Use at the entry point of each unit of work.
func WithOperation(ctx context.Context, base *slog.Logger, operation string) context.Context {
	logger := base.With(
		slog.String("operation_id", uuid.NewString()),
		slog.String("operation", operation),
	)
	return WithLogger(ctx, logger)
}

// FromContext retrieves the scoped logger, falling back to slog.Default when
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
