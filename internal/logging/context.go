package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	jobIDKey  contextKey = "job_id"
	bookIDKey contextKey = "book_id"
)

// WithJobID stores a queue job identifier on the context for log enrichment.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// WithBookID stores a book identifier on the context for log enrichment.
func WithBookID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, bookIDKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(jobIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldJobID, id))
	}
	if id, ok := ctx.Value(bookIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldBookID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
