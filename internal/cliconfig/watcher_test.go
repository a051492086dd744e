package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/offramp/pkg/log"
)

func TestWatcherAppliesFlushInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("flush_interval = \"10s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var applied time.Duration
	w := NewWatcher(path, func(d time.Duration) {
		mu.Lock()
		applied = d
		mu.Unlock()
	}, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("flush_interval = \"3s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := applied
		mu.Unlock()
		if got == 3*time.Second {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher never applied the new flush interval")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("flush_interval = \"10s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	calls := 0
	w := NewWatcher(path, func(time.Duration) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("flush_interval = \"1s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("apply calls = %d, want 0 for unrelated file", calls)
	}
}

func TestWatcherIgnoresInvalidInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("flush_interval = \"10s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	calls := 0
	w := NewWatcher(path, func(time.Duration) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("flush_interval = \"bogus\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("apply calls = %d, want 0 for invalid interval", calls)
	}
}
