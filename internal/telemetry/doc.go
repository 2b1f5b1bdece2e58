// Package telemetry sets up OpenTelemetry tracing and metrics export for
// lswatch.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version), logger)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	registry := lswatch.New(transport,
//	    lswatch.WithMeterProvider(tel.MeterProvider()),
//	    lswatch.WithTracerProvider(tel.TracerProvider()),
//	)
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  service_name: "lswatch"
//	  protocol: grpc   # or http/protobuf
//
// # Error Handling
//
// Exporter setup failures do not stop the process. The instance is marked
// degraded and falls back to the global (no-op) providers.
//
// # Testing
//
// TestTelemetry records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	registry := lswatch.New(transport, lswatch.WithTracerProvider(tt.TracerProvider()))
//	...
//	tt.AssertSpanExists(t, "lswatch.Watch")
package telemetry
