package storage

import (
	"log/slog"

	"golang.org/x/time/rate"
)

// Option configures a Proxy.
type Option func(*Proxy)

// WithLogger sets the logger for proxy operations. Without it, logs are
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Proxy) {
		p.logger = logger
	}
}

// WithMetrics attaches Prometheus metrics to the proxy. Create them with
// [NewMetrics] against the registry of your choice.
func WithMetrics(m *Metrics) Option {
	return func(p *Proxy) {
		p.metrics = m
	}
}

// WithLimiter gates backend fetches with the given limiter. Coalesced
// joiners share the admission of the fetch they join; they do not consume
// tokens of their own. Writes and streaming reads are not limited.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Proxy) {
		p.limiter = l
	}
}
