// Package offramp provides a resilient dual-mode wrapper for buffered
// components: telemetry collectors, audit loggers, tracers, rate
// limiter state, anything that records items and ships them somewhere.
//
// A service probes its remote backend exactly once at construction.
// If the probe fails, or any later delivery fails, the service
// commits permanently to local-only operation and spills batches to
// newline-delimited JSON files instead. There are no retries and no
// reconnection: a single failure is conclusive for the lifetime of
// the instance, which keeps failure handling flat and log output
// quiet.
//
// Example usage:
//
//	cfg := offramp.DefaultConfig()
//	cfg.Component = "telemetry"
//	cfg.LocalDir = "/var/lib/myapp/offramp"
//	sink := offramp.NewHTTPSink(offramp.HTTPSinkConfig{
//	    BaseURL:   "https://ingest.example.com",
//	    AuthKey:   "your-api-key",
//	    Component: cfg.Component,
//	}, nil, nil)
//	svc, err := offramp.New(cfg, offramp.WithSink(sink))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Shutdown(context.Background())
//
//	svc.Record(map[string]any{"event": "login", "user": 42})
package offramp

import (
	httpadapter "github.com/bft-labs/offramp/internal/adapters/http"
	"github.com/bft-labs/offramp/internal/domain"
	"github.com/bft-labs/offramp/internal/ports"
	"github.com/bft-labs/offramp/internal/service"
	"github.com/bft-labs/offramp/pkg/log"
)

// Config holds the construction parameters for a Service.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = service.Config

// Service is the dual-mode wrapper. See the package documentation.
type Service = service.Service

// Registry holds named service instances for a process.
type Registry = service.Registry

// Option configures a Service during construction.
type Option = service.Option

// Sink is the remote-backend contract a service delivers to while in
// remote mode. Implement it to bind the core to your transport, or
// use NewHTTPSink.
type Sink = ports.Sink

// Store is the local persistence contract used in local mode.
type Store = ports.Store

// HTTPClient abstracts HTTP operations; *http.Client satisfies it.
type HTTPClient = ports.HTTPClient

// Logger is the structured logging abstraction.
type Logger = log.Logger

// Item is a single buffered record.
type Item = domain.Item

// Batch is an ordered set of items delivered by one flush.
type Batch = domain.Batch

// Mode is the delivery mode of a service.
type Mode = domain.Mode

// Delivery modes.
const (
	ModeUndecided = domain.ModeUndecided
	ModeRemote    = domain.ModeRemote
	ModeLocal     = domain.ModeLocal
)

// FlushReport describes the outcome of a single flush.
type FlushReport = domain.FlushReport

// Errors returned by the public API, checkable with errors.Is.
var (
	ErrInvalidConfig = domain.ErrInvalidConfig
	ErrClosed        = domain.ErrClosed
)

// New constructs a Service. If a sink was supplied via WithSink the
// connectivity probe runs once during this call.
func New(cfg Config, opts ...Option) (*Service, error) {
	return service.New(cfg, opts...)
}

// DefaultConfig returns a Config with sensible default values.
// At minimum, set Component and LocalDir before calling New.
func DefaultConfig() Config {
	return service.DefaultConfig()
}

// NewRegistry creates an empty named-service registry.
func NewRegistry(logger Logger) *Registry {
	return service.NewRegistry(logger)
}

// WithSink supplies the remote sink. Without one the service starts
// in local mode and never probes.
func WithSink(sink Sink) Option {
	return service.WithSink(sink)
}

// WithStore overrides the default filesystem spill store.
func WithStore(store Store) Option {
	return service.WithStore(store)
}

// WithLogger supplies a logger. The default discards everything.
func WithLogger(logger Logger) Option {
	return service.WithLogger(logger)
}

// WithMetrics enables prometheus counters for the service.
func WithMetrics() Option {
	return service.WithMetrics()
}

// HTTPSinkConfig holds the settings for the bundled HTTP sink.
type HTTPSinkConfig = httpadapter.SinkConfig

// NewHTTPSink creates a Sink that POSTs batches as JSON arrays and
// probes a health endpoint. A nil client uses a standard http.Client;
// a nil logger stays silent.
func NewHTTPSink(cfg HTTPSinkConfig, client HTTPClient, logger Logger) Sink {
	return httpadapter.NewSink(cfg, client, logger)
}
