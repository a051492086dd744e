package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/offramp/internal/domain"
)

func testBatch(payloads ...string) *domain.Batch {
	b := domain.NewBatch()
	for i, p := range payloads {
		b.Add(domain.Item{Payload: json.RawMessage(p), Seq: uint64(i + 1)})
	}
	return b
}

func TestAppendWritesJSONLSegment(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "telemetry")

	if err := store.Append(context.Background(), testBatch(`{"e":1}`, `{"e":2}`)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("segment count = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "telemetry_") || !strings.HasSuffix(name, ".json") {
		t.Errorf("segment name = %q, want telemetry_{ts}.json", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if lines[0] != `{"e":1}` || lines[1] != `{"e":2}` {
		t.Errorf("lines = %v, want payloads in record order", lines)
	}
}

func TestAppendSameSecondGetsDistinctSegments(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "audit")

	for i := 0; i < 3; i++ {
		if err := store.Append(context.Background(), testBatch(`{"n":`+string(rune('0'+i))+`}`)); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("segment count = %d, want 3 (same-second batches must not collide)", len(entries))
	}
}

func TestAppendEmptyBatchIsNoop(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "x")

	if err := store.Append(context.Background(), domain.NewBatch()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("segment count = %d, want 0", len(entries))
	}
}

func TestDrainReturnsOldestFirstWithoutRemoving(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "tr")

	if err := store.Append(context.Background(), testBatch(`{"a":1}`, `{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(context.Background(), testBatch(`{"b":1}`)); err != nil {
		t.Fatal(err)
	}

	items, segments, err := store.Drain(context.Background(), 10)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if string(items[0].Payload) != `{"a":1}` || string(items[2].Payload) != `{"b":1}` {
		t.Errorf("drain order wrong: %s ... %s", items[0].Payload, items[2].Payload)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}

	// Drain must not remove.
	items2, _, err := store.Drain(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items2) != 3 {
		t.Errorf("second drain items = %d, want 3 (drain is non-destructive)", len(items2))
	}
}

func TestDrainHonorsMaxAtSegmentGranularity(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "tr")

	if err := store.Append(context.Background(), testBatch(`{"a":1}`, `{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(context.Background(), testBatch(`{"b":1}`)); err != nil {
		t.Fatal(err)
	}

	items, segments, err := store.Drain(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
	if len(segments) != 1 {
		t.Errorf("segments = %d, want 1 (whole segments only)", len(segments))
	}
}

func TestRemoveDeletesConsumedSegments(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "tr")

	if err := store.Append(context.Background(), testBatch(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	_, segments, err := store.Drain(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(segments); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	items, _, err := store.Drain(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("items after Remove = %d, want 0", len(items))
	}

	// Removing again is fine (idempotent).
	if err := store.Remove(segments); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestRemoveRejectsPathTraversal(t *testing.T) {
	store := NewSpillStore(t.TempDir(), "tr")
	if err := store.Remove([]string{"../escape.json"}); err == nil {
		t.Error("Remove accepted a path-like segment name")
	}
}

func TestHealth(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "tr")
	if !store.Health() {
		t.Error("Health() = false for writable dir")
	}

	// Unwritable path.
	bad := NewSpillStore(filepath.Join(dir, "file-not-dir", "x"), "tr")
	if err := os.WriteFile(filepath.Join(dir, "file-not-dir"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if bad.Health() {
		t.Error("Health() = true for unwritable dir")
	}
}

func TestDrainIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewSpillStore(dir, "tr")

	if err := os.WriteFile(filepath.Join(dir, "other_1.json"), []byte(`{"x":1}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tr_notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	items, _, err := store.Drain(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0 (foreign files must be ignored)", len(items))
	}
}
