package ttlcache

import (
	"log/slog"

	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
)

type options struct {
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a store.
type Option func(*options)

// WithClock sets the clock used for expiry decisions.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.clock == nil {
		o.clock = defaultClock
	}
	return o
}
