// Package logging provides structured logging with OpenTelemetry integration.
//
// The package wraps Zap with:
//   - a Trace level (-2, below Debug) for raw broker traffic
//   - console (stderr) and OpenTelemetry outputs
//   - context fields: trace_id, span_id, client.id and watch.path
//   - redaction of NATS credentials by field name and value pattern
//   - per-level sampling; Error and above are never sampled
//
// # Usage
//
//	cfg, err := logging.NewConfig("debug", "console")
//	if err != nil {
//	    return err
//	}
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithClientID(ctx, clientID)
//	ctx = logging.WithWatchPath(ctx, "sensors/kitchen/temperature")
//	logger.Info(ctx, "watch added")
//
// Library packages take a plain *zap.Logger; pass Underlying() to them.
//
// # Credentials
//
//	logger.Info(ctx, "connecting",
//	    logging.URL("url", cfg.NATS.URL),
//	    logging.Secret("nats.token", cfg.NATS.Token))
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	registry := lswatch.New(transport, lswatch.WithLogger(tl.Underlying()))
//	...
//	tl.AssertLogged(t, zapcore.DebugLevel, "discarding update")
//	tl.AssertNoSecrets(t)
package logging
