package ports

import (
	"context"

	"github.com/bft-labs/offramp/internal/domain"
)

// Store persists item batches locally when the service operates in
// local mode or when a remote send has failed.
// Implementations must be safe for concurrent Append calls from
// multiple services sharing a directory.
type Store interface {
	// Append durably writes one batch. Each call produces a new
	// segment so a partial write affects at most one batch.
	Append(ctx context.Context, batch *domain.Batch) error

	// Drain returns up to max of the oldest stored items in FIFO
	// order without removing them, along with the segment names that
	// back them. Removal happens only via Remove after the consumer
	// has committed the items (at-least-once delivery).
	Drain(ctx context.Context, max int) ([]domain.Item, []string, error)

	// Remove deletes consumed segments by name.
	Remove(segments []string) error

	// Health reports whether the storage path is writable.
	Health() bool
}
