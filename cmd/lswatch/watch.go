package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/lswatch/internal/config"
	httpserver "github.com/fyrsmithlabs/lswatch/internal/http"
	"github.com/fyrsmithlabs/lswatch/internal/logging"
	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/fyrsmithlabs/lswatch/internal/telemetry"
	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	"github.com/fyrsmithlabs/lswatch/pkg/lswatch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const eventBuffer = 256

type watchFlags struct {
	json   bool
	status bool
}

func newWatchCmd(a *app) *cobra.Command {
	var f watchFlags
	cmd := &cobra.Command{
		Use:   "watch PATH...",
		Short: "Print every change to the given paths until interrupted",
		Long: `Watch one or more paths and print the current value of each path, then
every change to it. A path that does not exist is reported as absent.

Examples:
  lswatch watch lights/kitchen
  lswatch watch --json lights/kitchen lights/hall
  lswatch watch --status lights/kitchen   # serve /health and /metrics`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), cmd.OutOrStdout(), args, f)
		},
	}
	cmd.Flags().BoolVar(&f.json, "json", false, "print changes as JSON lines")
	cmd.Flags().BoolVar(&f.status, "status", false, "serve status endpoints (implies server.enabled)")
	return cmd
}

func (a *app) runWatch(ctx context.Context, out io.Writer, paths []string, f watchFlags) error {
	for _, p := range paths {
		if err := listing.ValidatePath(p); err != nil {
			return fmt.Errorf("watch %q: %w", p, err)
		}
	}

	tel, err := a.startTelemetry(ctx)
	if err != nil {
		return err
	}
	defer a.shutdownTelemetry(tel)

	sess, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	registry := lswatch.New(
		natsls.NewTransport(sess.kv, a.natsOptions()...),
		lswatch.WithLogger(a.logger.Underlying()),
		lswatch.WithMeterProvider(tel.MeterProvider()),
		lswatch.WithTracerProvider(tel.TracerProvider()),
	)

	events := make(chan changeEvent, eventBuffer)
	printed := make(chan error, 1)
	go func() {
		printed <- printEvents(out, events, f.json)
	}()

	stop := func() error {
		closeErr := registry.Close()
		close(events)
		return errors.Join(closeErr, <-printed)
	}

	for _, p := range paths {
		pathCtx := logging.WithWatchPath(ctx, p)
		if _, err := registry.Watch(pathCtx, p, func(path string, entry listing.Entry) {
			events <- newChangeEvent(path, entry)
		}); err != nil {
			return errors.Join(fmt.Errorf("watch %q: %w", p, err), stop())
		}
		a.logger.Info(pathCtx, "watching path")
	}

	var srv *httpserver.Server
	if f.status || a.cfg.Server.Enabled {
		srv, err = a.startStatusServer(sess, registry, tel)
		if err != nil {
			return errors.Join(err, stop())
		}
	}

	<-ctx.Done()
	a.logger.Info(context.WithoutCancel(ctx), "shutting down", zap.Int("paths", len(paths)))

	var shutdownErr error
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration())
		shutdownErr = srv.Shutdown(shutdownCtx)
		cancel()
	}
	return errors.Join(shutdownErr, stop())
}

// printEvents writes each event until events is closed. It keeps draining
// after a write error so callbacks never block.
func printEvents(out io.Writer, events <-chan changeEvent, asJSON bool) error {
	var err error
	for ev := range events {
		if err != nil {
			continue
		}
		if asJSON {
			err = writeJSON(out, ev)
		} else {
			_, err = fmt.Fprintln(out, formatChange(ev))
		}
	}
	return err
}

func (a *app) startStatusServer(sess *session, registry *lswatch.Registry, tel *telemetry.Telemetry) (*httpserver.Server, error) {
	opts := []httpserver.Option{
		httpserver.WithVersion(version),
		httpserver.WithClientID(a.clientID),
		httpserver.WithMeterProvider(tel.MeterProvider()),
		httpserver.WithHealthCheck("nats", func(context.Context) error {
			if !sess.nc.IsConnected() {
				return fmt.Errorf("connection %s", sess.nc.Status())
			}
			return nil
		}),
	}
	if tel.IsEnabled() {
		opts = append(opts, httpserver.WithHealthCheck("telemetry", func(context.Context) error {
			if tel.Health().Degraded {
				return errors.New("exporter degraded")
			}
			return nil
		}))
	}

	srv, err := httpserver.NewServer(registry, a.logger.Underlying(), serverConfig(a.cfg.Server), opts...)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Error(context.Background(), "http server failed", zap.Error(err))
		}
	}()
	return srv, nil
}

func serverConfig(sc config.ServerConfig) *httpserver.Config {
	return &httpserver.Config{Host: sc.Host, Port: sc.Port}
}

func (a *app) shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
	}
}
