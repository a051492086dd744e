package domain

import "time"

// Mode is the delivery mode of a service.
// ModeUndecided exists only during construction; once a service
// reaches ModeLocal it never returns to ModeRemote.
type Mode int

const (
	// ModeUndecided means the connectivity probe has not run yet.
	ModeUndecided Mode = iota

	// ModeRemote means the probe succeeded and flushes go to the sink.
	ModeRemote

	// ModeLocal means flushes go to the local spill store. Terminal.
	ModeLocal
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUndecided:
		return "undecided"
	case ModeRemote:
		return "remote"
	case ModeLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Probe records the single connectivity attempt made for a service.
// Attempted becomes true at most once per service instance; it is the
// latch that prevents repeat probing.
type Probe struct {
	Attempted bool
	Succeeded bool
	At        time.Time
}

// Outcome returns the mode implied by this probe.
func (p Probe) Outcome() Mode {
	if !p.Attempted {
		return ModeUndecided
	}
	if p.Succeeded {
		return ModeRemote
	}
	return ModeLocal
}
