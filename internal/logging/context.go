package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context: the active span,
// the client session id and the watched path.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if clientID := ClientIDFromContext(ctx); clientID != "" {
		fields = append(fields, zap.String("client.id", clientID))
	}

	if path := WatchPathFromContext(ctx); path != "" {
		fields = append(fields, zap.String("watch.path", path))
	}

	return fields
}

type clientCtxKey struct{}
type watchPathCtxKey struct{}
type loggerCtxKey struct{}

// WithClientID adds the client session id to context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, clientID)
}

// ClientIDFromContext extracts the client session id from context.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithWatchPath adds the path being watched to context.
func WithWatchPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, watchPathCtxKey{}, path)
}

// WatchPathFromContext extracts the watched path from context.
func WatchPathFromContext(ctx context.Context) string {
	if path, ok := ctx.Value(watchPathCtxKey{}).(string); ok {
		return path
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
