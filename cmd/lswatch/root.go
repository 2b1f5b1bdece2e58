package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/lswatch/internal/config"
	"github.com/fyrsmithlabs/lswatch/internal/logging"
	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/fyrsmithlabs/lswatch/internal/telemetry"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
)

// app holds state shared by all commands of one invocation.
type app struct {
	configPath string
	natsURL    string
	logLevel   string

	cfg      *config.Config
	logger   *logging.Logger
	clientID string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lswatch",
		Short: "Watch paths in a NATS-advertised directory tree",
		Long: `lswatch watches individual paths in a directory tree whose listings are
published to a NATS JetStream key-value bucket, one listing per directory.

Examples:
  # Run a local broker
  lswatch broker

  # Publish listings
  lswatch put / '{"lights": [{"behaviour": "DIRECTORY"}]}'
  lswatch put lights/ '{"kitchen": [{"behaviour": "PROPERTY-1:N"}]}'

  # Watch a path until interrupted
  lswatch watch lights/kitchen`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.config/lswatch/config.yaml)")
	flags.StringVar(&a.natsURL, "nats-url", "", "NATS server URL, overrides nats.url")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newWatchCmd(a),
		newLsCmd(a),
		newPutCmd(a),
		newRmCmd(a),
		newBrokerCmd(a),
	)
	return root
}

// init loads configuration, applies flag overrides and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("nats-url") {
		cfg.NATS.URL = a.natsURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.clientID = uuid.NewString()

	logCfg, err := logging.NewConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	logCfg.Fields["version"] = version
	if cfg.Telemetry.Enabled {
		logCfg.Output.OTEL = true
	}
	logger, err := logging.NewLogger(logCfg, global.GetLoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cmd.SetContext(logging.WithLogger(logging.WithClientID(cmd.Context(), a.clientID), logger))
	return nil
}

// opTimeout bounds one-shot broker operations.
func (a *app) opTimeout() time.Duration {
	return 2 * a.cfg.NATS.ConnectTimeout.Duration()
}

func (a *app) startTelemetry(ctx context.Context) (*telemetry.Telemetry, error) {
	return telemetry.New(ctx, telemetry.FromConfig(a.cfg.Telemetry, version), a.logger.Underlying())
}

// session is an open broker connection and listing bucket.
type session struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

func (s *session) Close() {
	s.nc.Close()
}

func (a *app) connect(ctx context.Context) (*session, error) {
	nc, err := natsls.Connect(a.cfg.NATS, "lswatch-"+a.clientID, a.logger.Underlying())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opTimeout())
	defer cancel()
	kv, err := natsls.OpenBucket(ctx, nc, a.cfg.NATS.Bucket, a.cfg.NATS.CreateBucket)
	if err != nil {
		nc.Close()
		return nil, err
	}

	a.logger.Debug(ctx, "session opened",
		zap.String("bucket", a.cfg.NATS.Bucket),
		zap.String("prefix", a.cfg.NATS.Prefix))
	return &session{nc: nc, kv: kv}, nil
}

func (a *app) natsOptions() []natsls.Option {
	return []natsls.Option{
		natsls.WithPrefix(a.cfg.NATS.Prefix),
		natsls.WithLogger(a.logger.Underlying()),
	}
}

// directoryKey turns a DIR argument into a directory key. "/" and "" name
// the root; other arguments get a trailing separator.
func directoryKey(arg string) string {
	arg = strings.TrimPrefix(arg, "/")
	if arg == "" || strings.HasSuffix(arg, "/") {
		return arg
	}
	return arg + "/"
}
