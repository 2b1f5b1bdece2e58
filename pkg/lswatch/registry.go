package lswatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Registry multiplexes path watches onto directory listing subscriptions.
//
// A Registry is bound to one Transport. Create one per client session; it
// holds no process-wide state.
type Registry struct {
	transport Transport
	logger    *zap.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	mu        sync.Mutex
	closed    bool
	nextID    uint64
	nextSubID uint64

	// tree holds the last listing received per subscribed directory key.
	tree listing.Tree
	// dependents maps a directory key to the watched paths whose ancestor
	// chain contains it. Its size is the key's reference count.
	dependents    map[string]map[string]struct{}
	subscriptions map[string]subscriptionRecord
	watches       map[string]*watchRecord
}

// subscriptionRecord tags a Subscription so deliveries from a superseded
// subscription to the same key can be told apart.
type subscriptionRecord struct {
	id  uint64
	sub Subscription
}

type watchRecord struct {
	chain         []string
	registrations []registration
	last          listing.Entry
}

type registration struct {
	id       uint64
	callback Callback
}

type options struct {
	logger         *zap.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// Option configures a Registry.
type Option func(*options)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// New creates a Registry that subscribes through transport.
func New(transport Transport, opts ...Option) *Registry {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	return &Registry{
		transport:     transport,
		logger:        o.logger,
		metrics:       newMetrics(o.meterProvider.Meter(instrumentationName), o.logger),
		tracer:        o.tracerProvider.Tracer(instrumentationName),
		tree:          make(listing.Tree),
		dependents:    make(map[string]map[string]struct{}),
		subscriptions: make(map[string]subscriptionRecord),
		watches:       make(map[string]*watchRecord),
	}
}

// Watch registers callback for path and calls it with the path's current
// entry before returning.
//
// The first registration for a path subscribes to every directory on its
// ancestor chain that is not already subscribed. Further registrations for
// the same path receive the value most recently delivered to the others.
// The same callback may be registered more than once; each registration is
// called separately and is removed separately through its Handle.
func (r *Registry) Watch(ctx context.Context, path string, callback Callback) (*Handle, error) {
	if err := listing.ValidatePath(path); err != nil {
		return nil, err
	}
	if callback == nil {
		return nil, ErrNilCallback
	}

	ctx, span := r.tracer.Start(ctx, "lswatch.Watch",
		trace.WithAttributes(attribute.String("lswatch.path", path)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	record, ok := r.watches[path]
	if !ok {
		chain := listing.AncestorChain(path)
		if err := r.acquire(ctx, path, chain); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "subscribe failed")
			return nil, err
		}
		record = &watchRecord{
			chain: chain,
			last:  listing.Lookup(r.tree, path),
		}
		r.watches[path] = record
		r.metrics.watchDelta(ctx, 1)
		r.logger.Debug("watch added",
			zap.String("path", path),
			zap.Int("chain_length", len(chain)))
	}

	r.nextID++
	reg := registration{id: r.nextID, callback: callback}
	record.registrations = append(record.registrations, reg)
	r.metrics.registrationDelta(ctx, 1)

	span.SetAttributes(attribute.Int("lswatch.registrations", len(record.registrations)))
	r.deliver(ctx, path, record.last, reg, deliveryInitial)

	return &Handle{registry: r, path: path, id: reg.id}, nil
}

// Unwatch removes the registration identified by handle.
//
// When the last registration for a path is removed, directories no other
// watch needs are unsubscribed and their cached listings dropped. Unsubscribe
// failures are returned after the registry state has been updated.
func (r *Registry) Unwatch(ctx context.Context, handle *Handle) error {
	if handle == nil || handle.registry != r {
		return ErrNotWatching
	}

	ctx, span := r.tracer.Start(ctx, "lswatch.Unwatch",
		trace.WithAttributes(attribute.String("lswatch.path", handle.path)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	record, ok := r.watches[handle.path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotWatching, handle.path)
	}

	index := -1
	for i, reg := range record.registrations {
		if reg.id == handle.id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNotWatching, handle.path)
	}

	record.registrations = append(record.registrations[:index], record.registrations[index+1:]...)
	r.metrics.registrationDelta(ctx, -1)
	if len(record.registrations) > 0 {
		return nil
	}

	delete(r.watches, handle.path)
	r.metrics.watchDelta(ctx, -1)
	r.logger.Debug("watch removed", zap.String("path", handle.path))

	if err := r.release(ctx, handle.path, record.chain); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsubscribe failed")
		return err
	}
	return nil
}

// OnTreeChanged applies a directory listing update and notifies every watch
// whose resolved entry changed. A nil dir removes the cached listing.
//
// Updates for directories that are no longer subscribed are discarded.
// The Registry keeps dir; callers must not modify it afterwards.
func (r *Registry) OnTreeChanged(key string, dir listing.Directory) {
	r.applyUpdate(key, dir, 0)
}

// handlerFor returns the ChangeHandler given to the transport for the
// subscription with id.
func (r *Registry) handlerFor(id uint64) ChangeHandler {
	return func(key string, dir listing.Directory) {
		r.applyUpdate(key, dir, id)
	}
}

// applyUpdate implements OnTreeChanged. A non-zero subscriptionID restricts
// the update to the subscription currently held for key.
func (r *Registry) applyUpdate(key string, dir listing.Directory, subscriptionID uint64) {
	ctx, span := r.tracer.Start(context.Background(), "lswatch.OnTreeChanged",
		trace.WithAttributes(
			attribute.String("lswatch.key", key),
			attribute.Bool("lswatch.deleted", dir == nil),
		))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	dependents := r.dependents[key]
	current, subscribed := r.subscriptions[key]
	stale := subscriptionID != 0 && (!subscribed || current.id != subscriptionID)
	if r.closed || len(dependents) == 0 || stale {
		r.metrics.recordUpdate(ctx, updateOrphaned)
		r.logger.Debug("discarding update for unsubscribed directory", zap.String("key", key))
		return
	}

	if dir == nil {
		delete(r.tree, key)
		r.metrics.recordUpdate(ctx, updateDeleted)
	} else {
		r.tree[key] = dir
		r.metrics.recordUpdate(ctx, updateListing)
	}

	paths := make([]string, 0, len(dependents))
	for path := range dependents {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	changed := 0
	for _, path := range paths {
		record, ok := r.watches[path]
		if !ok {
			panic(fmt.Sprintf("lswatch: invariant violated: %q depends on %q without a watch record", path, key))
		}

		value := listing.Lookup(r.tree, path)
		if listing.Equal(value, record.last) {
			continue
		}
		record.last = value
		changed++

		for _, reg := range record.registrations {
			r.deliver(ctx, path, value, reg, deliveryChange)
		}
	}

	span.SetAttributes(attribute.Int("lswatch.changed_paths", changed))
	r.logger.Debug("directory listing updated",
		zap.String("key", key),
		zap.Bool("deleted", dir == nil),
		zap.Int("affected_paths", len(paths)),
		zap.Int("changed_paths", changed))
}

// Close unsubscribes from every directory and drops all watches. Later calls
// to Watch and Unwatch return ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	ctx := context.Background()
	keys := make([]string, 0, len(r.subscriptions))
	for key := range r.subscriptions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		if err := r.subscriptions[key].sub.Unsubscribe(); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %q: %w", key, err))
		}
		r.metrics.subscriptionDelta(ctx, -1)
	}

	registrations := 0
	for _, record := range r.watches {
		registrations += len(record.registrations)
	}
	r.metrics.registrationDelta(ctx, -int64(registrations))
	r.metrics.watchDelta(ctx, -int64(len(r.watches)))

	r.tree = make(listing.Tree)
	r.dependents = make(map[string]map[string]struct{})
	r.subscriptions = make(map[string]subscriptionRecord)
	r.watches = make(map[string]*watchRecord)

	r.logger.Debug("registry closed", zap.Int("subscriptions", len(keys)))
	return errors.Join(errs...)
}

// acquire adds path as a dependent of every key in chain, subscribing to keys
// that had no dependents. On failure every change made so far is undone.
func (r *Registry) acquire(ctx context.Context, path string, chain []string) error {
	for i, key := range chain {
		dependents, ok := r.dependents[key]
		if !ok {
			r.nextSubID++
			id := r.nextSubID
			sub, err := r.transport.Subscribe(ctx, key, r.handlerFor(id))
			if err != nil {
				r.metrics.recordSubscribeError(ctx)
				r.logger.Warn("subscribe failed",
					zap.String("key", key),
					zap.String("path", path),
					zap.Error(err))
				err = fmt.Errorf("subscribe %q: %w", key, err)
				if releaseErr := r.release(ctx, path, chain[:i]); releaseErr != nil {
					err = errors.Join(err, releaseErr)
				}
				return err
			}
			dependents = make(map[string]struct{})
			r.dependents[key] = dependents
			r.subscriptions[key] = subscriptionRecord{id: id, sub: sub}
			r.metrics.subscriptionDelta(ctx, 1)
			r.logger.Debug("subscribed", zap.String("key", key))
		}
		dependents[path] = struct{}{}
	}
	return nil
}

// release removes path as a dependent of every key in chain, unsubscribing
// from and forgetting keys left without dependents.
func (r *Registry) release(ctx context.Context, path string, chain []string) error {
	var errs []error
	for _, key := range chain {
		dependents := r.dependents[key]
		if _, ok := dependents[path]; !ok {
			panic(fmt.Sprintf("lswatch: invariant violated: reference count underflow for %q releasing %q", key, path))
		}
		delete(dependents, path)
		if len(dependents) > 0 {
			continue
		}

		record := r.subscriptions[key]
		delete(r.dependents, key)
		delete(r.subscriptions, key)
		delete(r.tree, key)
		r.metrics.subscriptionDelta(ctx, -1)

		if err := record.sub.Unsubscribe(); err != nil {
			r.logger.Warn("unsubscribe failed", zap.String("key", key), zap.Error(err))
			errs = append(errs, fmt.Errorf("unsubscribe %q: %w", key, err))
			continue
		}
		r.logger.Debug("unsubscribed", zap.String("key", key))
	}
	return errors.Join(errs...)
}

func (r *Registry) deliver(ctx context.Context, path string, entry listing.Entry, reg registration, reason string) {
	reg.callback(path, entry)
	r.metrics.recordDelivery(ctx, reason)
}
