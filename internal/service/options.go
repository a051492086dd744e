package service

import (
	"github.com/bft-labs/offramp/internal/ports"
)

// options holds the injectable collaborators for a Service.
type options struct {
	sink    ports.Sink
	store   ports.Store
	logger  ports.Logger
	metrics bool
}

// Option configures a Service during construction.
type Option func(*options)

// WithSink supplies the remote sink. Without one the service starts
// in local mode and never probes.
func WithSink(sink ports.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithStore overrides the default filesystem spill store.
func WithStore(store ports.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger supplies a logger. The default discards everything.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables prometheus counters for this service.
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}
