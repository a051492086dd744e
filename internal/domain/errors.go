package domain

import "errors"

// Domain errors for the offramp core.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("offramp: invalid configuration")

	// ErrClosed is returned when an operation is attempted after Shutdown.
	ErrClosed = errors.New("offramp: service closed")

	// ErrAlreadyRunning is returned when the flush scheduler is started twice.
	ErrAlreadyRunning = errors.New("offramp: scheduler already running")

	// ErrNotRunning is returned when Stop() is called on a stopped scheduler.
	ErrNotRunning = errors.New("offramp: scheduler not running")
)
