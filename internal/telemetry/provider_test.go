package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	attrs := map[string]string{}
	for _, attr := range newResource(cfg).Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	assert.Equal(t, "lswatch", attrs["service.name"])
	assert.Equal(t, "1.0.0", attrs["service.version"])
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Equal(t, "AlwaysOnSampler", samplerFor(2).Description())
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "otel:4318", stripScheme("https://otel:4318"))
	assert.Equal(t, "otel:4318", stripScheme("http://otel:4318"))
	assert.Equal(t, "otel:4317", stripScheme("otel:4317"))
}

func TestNewProviders_BothProtocols(t *testing.T) {
	for _, protocol := range []string{ProtocolGRPC, ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			cfg.Protocol = protocol
			ctx := context.Background()
			res := newResource(cfg)

			// Exporters connect lazily, so no collector is needed.
			tp, err := newTracerProvider(ctx, cfg, res)
			require.NoError(t, err)
			require.NotNil(t, tp)
			t.Cleanup(func() { _ = tp.Shutdown(cancelled()) })

			mp, err := newMeterProvider(ctx, cfg, res)
			require.NoError(t, err)
			require.NotNil(t, mp)
			t.Cleanup(func() { _ = mp.Shutdown(cancelled()) })

			cfg.Metrics.Enabled = false
			disabled, err := newMeterProvider(ctx, cfg, res)
			require.NoError(t, err)
			assert.Nil(t, disabled)
		})
	}
}

// cancelled returns a done context so shutdown does not wait on a collector.
func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
