package storage

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one Proxy. Attach with
// [WithMetrics]; a Proxy without metrics records nothing.
type Metrics struct {
	fetches  *prometheus.CounterVec
	joins    prometheus.Counter
	inflight prometheus.Gauge
	duration prometheus.Histogram
}

// NewMetrics creates the proxy collectors and registers them with reg.
// Registration panics if the collectors are already registered, so create at
// most one Metrics per registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_proxy_fetches_total",
				Help: "Backend fetches by outcome",
			},
			[]string{"outcome"},
		),
		joins: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storage_proxy_coalesced_joins_total",
				Help: "Get calls that joined an in-flight fetch instead of starting one",
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storage_proxy_fetches_inflight",
				Help: "Backend fetches currently in flight",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storage_proxy_fetch_duration_seconds",
				Help:    "Backend fetch duration",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.fetches, m.joins, m.inflight, m.duration)
	return m
}

func (m *Metrics) joinShared() {
	if m == nil {
		return
	}
	m.joins.Inc()
}

// fetchStarted records an in-flight fetch and returns the settle callback.
func (m *Metrics) fetchStarted() func(elapsed time.Duration, err error) {
	if m == nil {
		return func(time.Duration, error) {}
	}
	m.inflight.Inc()
	return func(elapsed time.Duration, err error) {
		m.inflight.Dec()
		m.duration.Observe(elapsed.Seconds())
		m.fetches.WithLabelValues(outcomeLabel(err)).Inc()
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInternal):
		return "internal_error"
	default:
		return "backend_error"
	}
}
