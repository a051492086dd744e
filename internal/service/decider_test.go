package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/offramp/internal/domain"
)

func TestDeciderCachesOutcome(t *testing.T) {
	calls := 0
	d := &decider{}

	probe := func(ctx context.Context) error {
		calls++
		return errors.New("down")
	}

	if mode := d.decide(context.Background(), probe, time.Second); mode != domain.ModeLocal {
		t.Errorf("mode = %v, want local", mode)
	}

	// A probe that would now succeed must not run: the first outcome
	// is cached for the instance's lifetime.
	probeUp := func(ctx context.Context) error {
		calls++
		return nil
	}
	if mode := d.decide(context.Background(), probeUp, time.Second); mode != domain.ModeLocal {
		t.Errorf("cached mode = %v, want local", mode)
	}
	if calls != 1 {
		t.Errorf("probe calls = %d, want 1", calls)
	}

	p := d.last()
	if !p.Attempted || p.Succeeded {
		t.Errorf("probe record = %+v, want attempted and failed", p)
	}
	if p.At.IsZero() {
		t.Error("probe timestamp not recorded")
	}
}

func TestDeciderSuccess(t *testing.T) {
	d := &decider{}
	mode := d.decide(context.Background(), func(ctx context.Context) error { return nil }, time.Second)
	if mode != domain.ModeRemote {
		t.Errorf("mode = %v, want remote", mode)
	}
}

func TestDeciderTimeout(t *testing.T) {
	d := &decider{}
	mode := d.decide(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 10*time.Millisecond)
	if mode != domain.ModeLocal {
		t.Errorf("mode = %v, want local on timeout", mode)
	}
}
