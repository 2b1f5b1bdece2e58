package natsls

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the NATS listing transport.
type Metrics struct {
	WatchersActive    prometheus.Gauge
	UpdatesTotal      *prometheus.CounterVec
	DecodeErrorsTotal prometheus.Counter
	StoreOpsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers the transport metrics with the default
// Prometheus registry. Registration happens once per process.
//
// Metrics:
//   - natsls_watchers_active - KV watchers currently open
//   - natsls_updates_total{op} - listing updates received ("put", "delete", "purge")
//   - natsls_decode_errors_total - stored values that were not valid listings
//   - natsls_store_operations_total{op,result} - Store calls by outcome
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			WatchersActive: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "natsls_watchers_active",
					Help: "Number of open KV watchers for directory listings",
				},
			),

			UpdatesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "natsls_updates_total",
					Help: "Total number of directory listing updates received",
				},
				[]string{"op"},
			),

			DecodeErrorsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "natsls_decode_errors_total",
					Help: "Total number of stored listings that failed to decode",
				},
			),

			StoreOpsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "natsls_store_operations_total",
					Help: "Total number of listing store operations",
				},
				[]string{"op", "result"}, // result: "ok" or "error"
			),
		}
	})

	return globalMetrics
}

func (m *Metrics) recordStore(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOpsTotal.WithLabelValues(op, result).Inc()
}
