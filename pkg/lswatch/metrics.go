package lswatch

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/lswatch/pkg/lswatch"

// Update kinds recorded on lswatch.tree.updates_total.
const (
	updateListing  = "listing"
	updateDeleted  = "deleted"
	updateOrphaned = "orphaned"
)

// Delivery reasons recorded on lswatch.deliveries_total.
const (
	deliveryInitial = "initial"
	deliveryChange  = "change"
)

// Metrics holds registry instruments.
type Metrics struct {
	meter           metric.Meter
	logger          *zap.Logger
	watches         metric.Int64UpDownCounter
	registrations   metric.Int64UpDownCounter
	subscriptions   metric.Int64UpDownCounter
	subscribeErrors metric.Int64Counter
	treeUpdates     metric.Int64Counter
	deliveries      metric.Int64Counter
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  meter,
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.watches, err = m.meter.Int64UpDownCounter(
		"lswatch.watches.active",
		metric.WithDescription("Number of distinct watched paths"),
		metric.WithUnit("{path}"),
	)
	if err != nil {
		m.logger.Warn("failed to create watches gauge", zap.Error(err))
	}

	m.registrations, err = m.meter.Int64UpDownCounter(
		"lswatch.registrations.active",
		metric.WithDescription("Number of registered watch callbacks"),
		metric.WithUnit("{callback}"),
	)
	if err != nil {
		m.logger.Warn("failed to create registrations gauge", zap.Error(err))
	}

	m.subscriptions, err = m.meter.Int64UpDownCounter(
		"lswatch.subscriptions.active",
		metric.WithDescription("Number of subscribed directory listings"),
		metric.WithUnit("{subscription}"),
	)
	if err != nil {
		m.logger.Warn("failed to create subscriptions gauge", zap.Error(err))
	}

	m.subscribeErrors, err = m.meter.Int64Counter(
		"lswatch.subscribe.errors_total",
		metric.WithDescription("Total number of failed directory subscriptions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create subscribe errors counter", zap.Error(err))
	}

	m.treeUpdates, err = m.meter.Int64Counter(
		"lswatch.tree.updates_total",
		metric.WithDescription("Total number of directory listing updates received"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		m.logger.Warn("failed to create tree updates counter", zap.Error(err))
	}

	m.deliveries, err = m.meter.Int64Counter(
		"lswatch.deliveries_total",
		metric.WithDescription("Total number of callback invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		m.logger.Warn("failed to create deliveries counter", zap.Error(err))
	}
}

func (m *Metrics) watchDelta(ctx context.Context, delta int64) {
	if m == nil || m.watches == nil {
		return
	}
	m.watches.Add(ctx, delta)
}

func (m *Metrics) registrationDelta(ctx context.Context, delta int64) {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.Add(ctx, delta)
}

func (m *Metrics) subscriptionDelta(ctx context.Context, delta int64) {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.Add(ctx, delta)
}

func (m *Metrics) recordSubscribeError(ctx context.Context) {
	if m == nil || m.subscribeErrors == nil {
		return
	}
	m.subscribeErrors.Add(ctx, 1)
}

func (m *Metrics) recordUpdate(ctx context.Context, kind string) {
	if m == nil || m.treeUpdates == nil {
		return
	}
	m.treeUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) recordDelivery(ctx context.Context, reason string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
