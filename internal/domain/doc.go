// Package domain contains the core entities and value objects for offramp.
//
// This package represents the innermost layer of the architecture. It
// has no dependencies on infrastructure concerns (HTTP, file system,
// logging) and contains only pure state and invariants.
//
// # Entities
//
//   - [Item]: A single buffered record (payload, created-at, sequence)
//   - [Batch]: An ordered set of items taken from the buffer in one flush
//   - [Mode]: The remote/local delivery mode with its one-way transition
//   - [Probe]: The single-connectivity-attempt latch
//   - [FlushReport]: The outcome of one flush
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Focused on invariants (one-way mode transition, FIFO sequence)
//   - Testable without mocks or external systems
package domain
