package domain

import (
	"encoding/json"
	"time"
)

// Item is a single buffered record moving between the in-memory
// buffer, the remote sink, and the local spill store.
type Item struct {
	// Payload is the opaque JSON value supplied by the caller.
	Payload json.RawMessage

	// CreatedAt is when the item was recorded.
	CreatedAt time.Time

	// Seq is the per-service monotonic sequence number. It defines
	// FIFO order within a single service instance.
	Seq uint64
}

// Batch is an ordered set of items taken from the buffer in one flush.
type Batch struct {
	// Items are in ascending Seq order.
	Items []Item
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{Items: make([]Item, 0)}
}

// Add appends an item to the batch.
func (b *Batch) Add(item Item) {
	b.Items = append(b.Items, item)
}

// Size returns the number of items in the batch.
func (b *Batch) Size() int {
	return len(b.Items)
}

// Empty returns true if the batch has no items.
func (b *Batch) Empty() bool {
	return len(b.Items) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.Items = b.Items[:0]
}

// FirstSeq returns the sequence number of the first item, or 0 if empty.
func (b *Batch) FirstSeq() uint64 {
	if len(b.Items) == 0 {
		return 0
	}
	return b.Items[0].Seq
}

// LastSeq returns the sequence number of the last item, or 0 if empty.
func (b *Batch) LastSeq() uint64 {
	if len(b.Items) == 0 {
		return 0
	}
	return b.Items[len(b.Items)-1].Seq
}
