package ports

import (
	"context"

	"github.com/bft-labs/offramp/internal/domain"
)

// Sink transmits item batches to the remote backend.
// Implementations handle serialization, transport, and authentication.
// All failures are equivalent to the caller: any error from Send or
// HealthCheck is conclusive, there is no retryable-vs-fatal distinction.
type Sink interface {
	// Send transmits a batch in one network call.
	// Returns nil on success, error on any failure.
	Send(ctx context.Context, batch *domain.Batch) error

	// HealthCheck probes the backend. It is invoked at most once per
	// service instance, by the mode decider during construction.
	HealthCheck(ctx context.Context) error
}
