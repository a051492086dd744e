package service

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/offramp/internal/domain"
)

// decider performs the single connectivity probe and caches the
// outcome. The Attempted latch guarantees the probe runs at most once
// per service instance; repeat calls return the cached mode.
type decider struct {
	mu    sync.Mutex
	probe domain.Probe
}

// decide runs probe under timeout the first time it is called and
// returns the resulting mode. Any error, including timeout, is
// conclusive: the outcome is local for the rest of the instance's
// life. There are no retries and no backoff.
func (d *decider) decide(ctx context.Context, probe func(context.Context) error, timeout time.Duration) domain.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.probe.Attempted {
		return d.probe.Outcome()
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := probe(probeCtx)
	d.probe = domain.Probe{
		Attempted: true,
		Succeeded: err == nil,
		At:        time.Now(),
	}
	return d.probe.Outcome()
}

// last returns the recorded probe attempt.
func (d *decider) last() domain.Probe {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.probe
}
