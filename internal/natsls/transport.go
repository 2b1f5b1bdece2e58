package natsls

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	"github.com/fyrsmithlabs/lswatch/pkg/lswatch"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

type options struct {
	prefix string
	logger *zap.Logger
}

// Option configures a Transport or Store.
type Option func(*options)

// WithPrefix sets the KV key prefix. Defaults to DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Transport delivers directory listings from a KV bucket.
type Transport struct {
	kv      jetstream.KeyValue
	prefix  string
	logger  *zap.Logger
	metrics *Metrics
}

var _ lswatch.Transport = (*Transport)(nil)

// NewTransport creates a Transport reading listings from kv.
func NewTransport(kv jetstream.KeyValue, opts ...Option) *Transport {
	o := newOptions(opts)
	return &Transport{
		kv:      kv,
		prefix:  o.prefix,
		logger:  o.logger.With(zap.String("component", "natsls.transport")),
		metrics: NewMetrics(),
	}
}

// Subscribe watches the listing of key. The current listing, if one is
// stored, is delivered first, followed by every later change. Deliveries
// run on a goroutine owned by the subscription, one at a time.
//
// ctx bounds only the creation of the watcher.
func (t *Transport) Subscribe(ctx context.Context, key string, handler lswatch.ChangeHandler) (lswatch.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := kvKey(t.prefix, key)
	if err != nil {
		return nil, err
	}

	// The watcher stops when its context ends, so it gets its own.
	watcher, err := t.kv.Watch(context.Background(), full)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", full, err)
	}

	sub := &subscription{
		transport: t,
		key:       key,
		watcher:   watcher,
	}
	t.metrics.WatchersActive.Inc()
	t.logger.Debug("watching listing", zap.String("key", key), zap.String("kv_key", full))

	go sub.run(handler)
	return sub, nil
}

type subscription struct {
	transport *Transport
	key       string
	watcher   jetstream.KeyWatcher
	stopped   atomic.Bool
	stopOnce  sync.Once
	stopErr   error
}

// run drains the watcher until it is stopped. Updates that arrive after
// Unsubscribe are discarded but still drained so the watcher can close.
func (s *subscription) run(handler lswatch.ChangeHandler) {
	for entry := range s.watcher.Updates() {
		// nil marks the end of the initial values.
		if entry == nil || s.stopped.Load() {
			continue
		}
		dir, ok := s.transport.decodeEntry(s.key, entry)
		if !ok {
			continue
		}
		handler(s.key, dir)
	}
}

// Unsubscribe stops the watcher. It does not wait for a delivery in
// progress.
func (s *subscription) Unsubscribe() error {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.transport.metrics.WatchersActive.Dec()
		if err := s.watcher.Stop(); err != nil {
			s.stopErr = fmt.Errorf("stop watcher for %q: %w", s.key, err)
		}
	})
	return s.stopErr
}

func (t *Transport) decodeEntry(key string, entry jetstream.KeyValueEntry) (listing.Directory, bool) {
	switch entry.Operation() {
	case jetstream.KeyValueDelete:
		t.metrics.UpdatesTotal.WithLabelValues("delete").Inc()
		return nil, true
	case jetstream.KeyValuePurge:
		t.metrics.UpdatesTotal.WithLabelValues("purge").Inc()
		return nil, true
	}

	t.metrics.UpdatesTotal.WithLabelValues("put").Inc()
	dir, err := DecodeDirectory(entry.Value())
	if err != nil {
		t.metrics.DecodeErrorsTotal.Inc()
		t.logger.Warn("ignoring malformed listing",
			zap.String("key", key),
			zap.Uint64("revision", entry.Revision()),
			zap.Error(err),
		)
		return nil, false
	}
	return dir, true
}
