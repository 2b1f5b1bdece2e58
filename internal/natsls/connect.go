package natsls

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/lswatch/internal/config"
	"github.com/fyrsmithlabs/lswatch/internal/logging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Connect opens a NATS connection using cfg. name identifies the client to
// the server and is usually derived from the session's client ID.
func Connect(cfg config.NATSConfig, name string, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(cfg.ConnectTimeout.Duration()),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait.Duration()),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", logging.URL("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("NATS connection closed")
		}),
	}
	if cfg.Token.IsSet() {
		opts = append(opts, nats.Token(cfg.Token.Value()))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", redactURL(cfg.URL), err)
	}
	logger.Info("connected to NATS", logging.URL("url", cfg.URL), zap.String("name", name))
	return nc, nil
}

// OpenBucket returns the listing bucket. When create is true the bucket is
// created if missing; otherwise a missing bucket is an error.
func OpenBucket(ctx context.Context, nc *nats.Conn, bucket string, create bool) (jetstream.KeyValue, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if create {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "lswatch directory listings",
			History:     1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
		return kv, nil
	}

	kv, err := js.KeyValue(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("bucket %q does not exist (enable nats.create_bucket to create it): %w", bucket, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucket, err)
	}
	return kv, nil
}

func redactURL(raw string) string {
	return logging.URL("url", raw).String
}
