package service

import (
	"fmt"
	"time"

	"github.com/bft-labs/offramp/internal/domain"
)

// Default configuration values.
const (
	DefaultBufferSize    = 100
	DefaultFlushInterval = 10 * time.Second
	DefaultProbeTimeout  = 2 * time.Second
	DefaultSendTimeout   = 5 * time.Second
)

// Config holds the construction parameters for a Service.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Component names this service instance. It keys spill segments
	// and registry entries and appears in logs and metrics.
	Component string

	// LocalDir is the spill directory for local-mode batches.
	LocalDir string

	// BufferSize bounds the in-memory buffer. Reaching it triggers an
	// implicit flush.
	BufferSize int

	// FlushInterval drives the background flush loop. Zero or
	// negative disables the loop; flushes are then explicit only.
	FlushInterval time.Duration

	// ProbeTimeout bounds the single connectivity probe.
	ProbeTimeout time.Duration

	// SendTimeout bounds each remote send.
	SendTimeout time.Duration

	// ForceLocal skips the probe and pins the service to local mode.
	ForceLocal bool
}

// DefaultConfig returns a Config with default values.
// At minimum, set Component and LocalDir before calling New.
func DefaultConfig() Config {
	return Config{
		BufferSize:    DefaultBufferSize,
		FlushInterval: DefaultFlushInterval,
		ProbeTimeout:  DefaultProbeTimeout,
		SendTimeout:   DefaultSendTimeout,
	}
}

// SetDefaults fills zero-valued timing fields. BufferSize is left
// alone so Validate can reject explicit non-positive values.
func (c *Config) SetDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
}

// Validate checks the configuration for errors.
// All violations wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Component == "" {
		return fmt.Errorf("%w: component name is required", domain.ErrInvalidConfig)
	}
	if c.LocalDir == "" {
		return fmt.Errorf("%w: local dir is required", domain.ErrInvalidConfig)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", domain.ErrInvalidConfig, c.BufferSize)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: send timeout must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
