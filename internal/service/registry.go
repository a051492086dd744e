package service

import (
	"context"
	"sync"

	"github.com/bft-labs/offramp/internal/ports"
	"github.com/bft-labs/offramp/pkg/log"
)

// Registry holds named service instances for a process. It replaces
// the ad-hoc global singleton maps this pattern tends to grow:
// construct one registry at startup and pass it where services are
// fetched by name.
type Registry struct {
	logger ports.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// registryEntry makes factory execution once-per-name without holding
// the registry lock across a construction, which can block on the
// connectivity probe.
type registryEntry struct {
	once sync.Once
	svc  *Service
	err  error
}

// NewRegistry creates an empty registry.
func NewRegistry(logger ports.Logger) *Registry {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Registry{
		logger:  logger,
		entries: make(map[string]*registryEntry),
	}
}

// GetOrCreate returns the service registered under name, constructing
// it with factory on first use. Concurrent calls for the same name
// return the same instance and run factory at most once. A factory
// error is not cached: the name becomes free for a later attempt.
func (r *Registry) GetOrCreate(name string, factory func() (*Service, error)) (*Service, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.svc, e.err = factory()
		if e.err == nil {
			r.logger.Info("service registered", ports.String("name", name))
		}
	})

	if e.err != nil {
		r.mu.Lock()
		if r.entries[name] == e {
			delete(r.entries, name)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	return e.svc, nil
}

// Get returns the service registered under name, or false if absent.
func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok || e.svc == nil {
		return nil, false
	}
	return e.svc, true
}

// Names returns the registered service names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		if e.svc != nil {
			names = append(names, name)
		}
	}
	return names
}

// Shutdown shuts down every registered service, flushing pending
// items. The first error is returned but all services are attempted.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	services := make([]*Service, 0, len(r.entries))
	for _, e := range r.entries {
		if e.svc != nil {
			services = append(services, e.svc)
		}
	}
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	var firstErr error
	for _, svc := range services {
		if _, err := svc.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
