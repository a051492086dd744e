package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/offramp/pkg/log"
)

func TestSchedulerRunsPeriodically(t *testing.T) {
	var runs int32
	s := newScheduler(10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, log.NewNoopLogger())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&runs) >= 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("runs = %d, want >= 3", atomic.LoadInt32(&runs))
}

func TestSchedulerSurvivesActionErrors(t *testing.T) {
	var runs int32
	s := newScheduler(10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("flush failed")
	}, log.NewNoopLogger())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&runs) >= 2 {
			return // loop kept going after the first error
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("runs = %d, want >= 2 despite errors", atomic.LoadInt32(&runs))
}

func TestSchedulerStopWaitsForInflightAction(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var completed int32

	s := newScheduler(time.Hour, func(ctx context.Context) error {
		close(started)
		<-release
		atomic.StoreInt32(&completed, 1)
		return nil
	}, log.NewNoopLogger())

	s.Kick()
	<-started

	stopDone := make(chan struct{})
	go func() {
		s.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.Fatal("Stop returned while an action was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop never returned")
	}
	if atomic.LoadInt32(&completed) != 1 {
		t.Error("in-flight action was interrupted")
	}
}

func TestSchedulerKickCoalesces(t *testing.T) {
	block := make(chan struct{})
	var runs int32
	s := newScheduler(time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		if atomic.LoadInt32(&runs) == 1 {
			<-block
		}
		return nil
	}, log.NewNoopLogger())

	s.Kick()
	// Burst of kicks while the first run blocks; they coalesce to one.
	for i := 0; i < 5; i++ {
		s.Kick()
	}
	close(block)

	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if got := atomic.LoadInt32(&runs); got > 2 {
		t.Errorf("runs = %d, want at most 2 (kicks must coalesce)", got)
	}
}

func TestSchedulerSetInterval(t *testing.T) {
	var runs int32
	s := newScheduler(time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, log.NewNoopLogger())
	defer s.Stop()

	s.SetInterval(10 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&runs) >= 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("interval change never took effect")
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := newScheduler(time.Hour, func(ctx context.Context) error { return nil }, log.NewNoopLogger())
	s.Stop()
	s.Stop()
}
