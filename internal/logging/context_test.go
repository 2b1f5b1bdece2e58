package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fieldMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_Trace(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "watch")
	defer span.End()

	fields := fieldMap(ContextFields(ctx))
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, true, fields["trace_sampled"])
}

func TestContextFields_NotSampled(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "watch")
	defer span.End()

	fields := fieldMap(ContextFields(ctx))
	assert.Contains(t, fields, "trace_id")
	assert.NotContains(t, fields, "trace_sampled")
}

func TestContextFields_ClientAndPath(t *testing.T) {
	ctx := WithClientID(context.Background(), "c-42")
	ctx = WithWatchPath(ctx, "foo/bar")

	assert.Equal(t, "c-42", ClientIDFromContext(ctx))
	assert.Equal(t, "foo/bar", WatchPathFromContext(ctx))

	fields := fieldMap(ContextFields(ctx))
	assert.Equal(t, map[string]interface{}{
		"client.id":  "c-42",
		"watch.path": "foo/bar",
	}, fields)
}

func TestContextAccessors_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ClientIDFromContext(ctx))
	assert.Empty(t, WatchPathFromContext(ctx))
}

func TestLogger_InContext(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Info(ctx, "from context")
	tl.AssertLogged(t, zapcore.InfoLevel, "from context")
}

func TestLogger_FromContextMissing(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info(context.Background(), "dropped")
	})
}
