package domain

// FlushPath identifies where a flush delivered its batch.
type FlushPath int

const (
	// FlushNone means the buffer was empty, nothing was delivered.
	FlushNone FlushPath = iota

	// FlushRemote means the batch went to the remote sink.
	FlushRemote

	// FlushLocal means the batch went to the local spill store.
	FlushLocal
)

// String returns a human-readable representation of the flush path.
func (p FlushPath) String() string {
	switch p {
	case FlushNone:
		return "none"
	case FlushRemote:
		return "remote"
	case FlushLocal:
		return "local"
	default:
		return "unknown"
	}
}

// FlushReport describes the outcome of a single flush.
// The common record path never inspects it; shutdown logic and tests
// use it to detect degraded operation.
type FlushReport struct {
	// Path is where the batch was delivered.
	Path FlushPath

	// Mode is the service mode after the flush completed.
	Mode Mode

	// Delivered is the number of items handed to the sink or store.
	Delivered int

	// Requeued is the number of items returned to the buffer after a
	// local append failure.
	Requeued int

	// Dropped is the number of items lost to buffer overflow while
	// re-queueing. Non-zero only under local storage exhaustion.
	Dropped int

	// Downgraded is true if this flush performed the one-way
	// remote-to-local transition.
	Downgraded bool
}
