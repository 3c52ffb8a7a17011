package ranked

import (
	"github.com/xiaoyong-z/streamstate"
)

type options struct {
	bottomCapacity int
	topCapacity    int
	recoveredCount uint64
	logger         *streamstate.Logger
	metrics        Observer
}

// Option configures State construction.
type Option func(*options)

// WithCacheCapacity bounds both cache sides to n entries each. A value
// <= 0 leaves the side unbounded (the default).
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.bottomCapacity = n
		o.topCapacity = n
	}
}

// WithBottomCapacity bounds only the bottom cache.
func WithBottomCapacity(n int) Option {
	return func(o *options) {
		o.bottomCapacity = n
	}
}

// WithTopCapacity bounds only the top cache.
func WithTopCapacity(n int) Option {
	return func(o *options) {
		o.topCapacity = n
	}
}

// WithRecoveredCount seeds the state with the row count recorded at the
// last successful checkpoint. Required when re-opening existing state;
// zero (the default) means a fresh, empty window.
func WithRecoveredCount(n uint64) Option {
	return func(o *options) {
		o.recoveredCount = n
	}
}

// WithLogger sets the structured logger. Nil restores the no-op default.
func WithLogger(l *streamstate.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = streamstate.NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics observer. Nil restores the no-op default.
func WithMetrics(m Observer) Option {
	return func(o *options) {
		if m == nil {
			m = &NoopObserver{}
		}
		o.metrics = m
	}
}
