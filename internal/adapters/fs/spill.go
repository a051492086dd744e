package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/offramp/internal/domain"
)

const healthFileName = ".health"

// SpillStore implements ports.Store using newline-delimited JSON
// segment files. Each Append produces one segment named
// {component}_{unix_ts}.json (with an ordinal suffix when two batches
// land in the same second), so a partial write affects at most one
// batch and segments are easy to inspect with standard tools.
type SpillStore struct {
	dir       string
	component string

	mu      sync.Mutex
	lastTS  int64
	ordinal int
}

// NewSpillStore creates a SpillStore writing under dir for the given
// component name. The directory is created on first Append.
func NewSpillStore(dir, component string) *SpillStore {
	return &SpillStore{dir: dir, component: component}
}

// Append durably writes one batch as a new JSONL segment.
// Uses atomic write (write to temp file, then rename) to prevent
// half-written segments surviving a crash.
func (s *SpillStore) Append(ctx context.Context, batch *domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("spill dir: %w", err)
	}

	var buf bytes.Buffer
	for _, item := range batch.Items {
		line, err := json.Marshal(item.Payload)
		if err != nil {
			return fmt.Errorf("encode item %d: %w", item.Seq, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	path := s.nextSegmentPathLocked()
	s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write segment: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit segment: %w", err)
	}
	return nil
}

// nextSegmentPathLocked picks a segment name, disambiguating batches
// written within the same second. Caller holds s.mu.
func (s *SpillStore) nextSegmentPathLocked() string {
	ts := time.Now().Unix()
	if ts == s.lastTS {
		s.ordinal++
	} else {
		s.lastTS = ts
		s.ordinal = 0
	}
	name := fmt.Sprintf("%s_%d.json", s.component, ts)
	if s.ordinal > 0 {
		name = fmt.Sprintf("%s_%d_%d.json", s.component, ts, s.ordinal)
	}
	return filepath.Join(s.dir, name)
}

// Drain returns up to max of the oldest stored items without removing
// them, plus the segment names backing them. Segments are returned
// whole so Remove never discards items that were not handed out; max
// is therefore a soft cap that can be exceeded by the items of the
// last included segment.
func (s *SpillStore) Drain(ctx context.Context, max int) ([]domain.Item, []string, error) {
	segments, err := s.segments()
	if err != nil {
		return nil, nil, err
	}

	var (
		items    []domain.Item
		included []string
		seq      uint64
	)
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if max > 0 && len(items) >= max {
			break
		}
		data, err := os.ReadFile(filepath.Join(s.dir, seg))
		if err != nil {
			return nil, nil, fmt.Errorf("read segment %s: %w", seg, err)
		}
		info, statErr := os.Stat(filepath.Join(s.dir, seg))
		created := time.Time{}
		if statErr == nil {
			created = info.ModTime()
		}
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			seq++
			items = append(items, domain.Item{
				Payload:   json.RawMessage(append([]byte(nil), line...)),
				CreatedAt: created,
				Seq:       seq,
			})
		}
		included = append(included, seg)
	}
	return items, included, nil
}

// Remove deletes consumed segments by name.
func (s *SpillStore) Remove(segments []string) error {
	for _, seg := range segments {
		// Segment names come from Drain; reject anything path-like.
		if seg != filepath.Base(seg) {
			return fmt.Errorf("invalid segment name %q", seg)
		}
		if err := os.Remove(filepath.Join(s.dir, seg)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove segment %s: %w", seg, err)
		}
	}
	return nil
}

// Health reports whether the spill directory is writable by doing a
// trivial write and delete.
func (s *SpillStore) Health() bool {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return false
	}
	probe := filepath.Join(s.dir, s.component+healthFileName)
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return false
	}
	return os.Remove(probe) == nil
}

// Dir returns the spill directory path.
func (s *SpillStore) Dir() string {
	return s.dir
}

// segments lists this component's segment files, oldest first.
// Unix timestamps keep a fixed digit count for the foreseeable
// future, so lexical order matches chronological order.
func (s *SpillStore) segments() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	prefix := s.component + "_"
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
