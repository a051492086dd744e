package service

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/offramp/internal/ports"
)

// scheduler drives a periodic action on a dedicated goroutine.
// Action failures are logged and swallowed so one bad run never kills
// the loop. Stop is cooperative: an in-flight action completes before
// the loop exits.
type scheduler struct {
	action   func(context.Context) error
	logger   ports.Logger
	kick     chan struct{}
	interval chan time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// newScheduler creates and starts a scheduler running action every
// interval. Kick schedules an immediate extra run.
func newScheduler(interval time.Duration, action func(context.Context) error, logger ports.Logger) *scheduler {
	s := &scheduler{
		action:   action,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		interval: make(chan time.Duration, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.loop(interval)
	return s
}

func (s *scheduler) loop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case d := <-s.interval:
			ticker.Reset(d)
			continue
		case <-ticker.C:
		case <-s.kick:
		}
		s.run()
	}
}

func (s *scheduler) run() {
	if err := s.action(context.Background()); err != nil {
		s.logger.Error("scheduled run failed", ports.Err(err))
	}
}

// Kick requests an immediate run. Coalesces with a pending request.
func (s *scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// SetInterval changes the tick interval of the running loop.
func (s *scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case s.interval <- d:
	case <-s.done:
	}
}

// Stop signals the loop to exit and waits for any in-flight action to
// complete. Safe to call more than once.
func (s *scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}
