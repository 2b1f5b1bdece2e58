package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const brokerReadyTimeout = 10 * time.Second

type brokerFlags struct {
	host     string
	port     int
	storeDir string
	noBucket bool
}

func newBrokerCmd(a *app) *cobra.Command {
	var f brokerFlags
	cmd := &cobra.Command{
		Use:   "broker",
		Short: "Run an embedded NATS broker with JetStream",
		Long: `Run a NATS broker with JetStream enabled and create the listing bucket,
for local development and tests. Port 0 picks a free port.

Examples:
  lswatch broker
  lswatch broker --port 4333 --store-dir /var/lib/lswatch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBroker(cmd.Context(), cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.host, "host", "127.0.0.1", "listen host")
	cmd.Flags().IntVar(&f.port, "port", 4222, "listen port")
	cmd.Flags().StringVar(&f.storeDir, "store-dir", "", "JetStream storage directory (default: system temp dir)")
	cmd.Flags().BoolVar(&f.noBucket, "no-bucket", false, "do not create the listing bucket")
	return cmd
}

func (a *app) runBroker(ctx context.Context, cmd *cobra.Command, f brokerFlags) error {
	ns, err := startBroker(f, a.logger.Underlying())
	if err != nil {
		return err
	}
	defer func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	}()

	if !f.noBucket {
		if err := a.createBucket(ctx, ns.ClientURL()); err != nil {
			return err
		}
	}

	a.logger.Info(ctx, "broker ready", zap.String("url", ns.ClientURL()))
	fmt.Fprintf(cmd.OutOrStdout(), "broker listening on %s\n", ns.ClientURL())

	<-ctx.Done()
	return nil
}

func (a *app) createBucket(ctx context.Context, url string) error {
	nc, err := nats.Connect(url, nats.Name("lswatch-broker-"+a.clientID))
	if err != nil {
		return fmt.Errorf("connect to embedded broker: %w", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(ctx, a.opTimeout())
	defer cancel()
	_, err = natsls.OpenBucket(ctx, nc, a.cfg.NATS.Bucket, true)
	return err
}

// startBroker starts a JetStream-enabled server and waits until it accepts
// connections.
func startBroker(f brokerFlags, logger *zap.Logger) (*server.Server, error) {
	opts := &server.Options{
		ServerName: "lswatch-broker",
		Host:       f.host,
		Port:       f.port,
		JetStream:  true,
		StoreDir:   f.storeDir,
		NoSigs:     true,
	}
	if opts.Port == 0 {
		opts.Port = server.RANDOM_PORT
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create broker: %w", err)
	}
	ns.SetLoggerV2(&serverLogger{logger.Named("nats-server").Sugar()}, false, false, false)

	go ns.Start()
	if !ns.ReadyForConnections(brokerReadyTimeout) {
		ns.Shutdown()
		return nil, errors.New("broker not ready for connections")
	}
	return ns, nil
}

// serverLogger routes nats-server logs to zap.
type serverLogger struct {
	s *zap.SugaredLogger
}

func (l *serverLogger) Noticef(format string, v ...any) { l.s.Infof(format, v...) }
func (l *serverLogger) Warnf(format string, v ...any)   { l.s.Warnf(format, v...) }
func (l *serverLogger) Fatalf(format string, v ...any)  { l.s.Errorf(format, v...) }
func (l *serverLogger) Errorf(format string, v ...any)  { l.s.Errorf(format, v...) }
func (l *serverLogger) Debugf(format string, v ...any)  { l.s.Debugf(format, v...) }
func (l *serverLogger) Tracef(format string, v ...any)  { l.s.Debugf(format, v...) }
