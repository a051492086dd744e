package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bft-labs/offramp/internal/service"
)

// Config holds CLI configuration for the offramp binary.
type Config struct {
	Component  string
	LocalDir   string
	ServiceURL string
	AuthKey    string

	BufferSize    int
	FlushInterval time.Duration
	ProbeTimeout  time.Duration
	SendTimeout   time.Duration

	ForceLocal  bool
	MetricsAddr string
	Once        bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Component:     "events",
		BufferSize:    service.DefaultBufferSize,
		FlushInterval: service.DefaultFlushInterval,
		ProbeTimeout:  service.DefaultProbeTimeout,
		SendTimeout:   service.DefaultSendTimeout,
		AuthKey:       os.Getenv("OFFRAMP_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Component == "" {
		return fmt.Errorf("component is required")
	}

	if c.LocalDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.LocalDir = fmt.Sprintf("%s/.offramp/%s", h, c.Component)
		} else {
			return fmt.Errorf("local-dir is required")
		}
	}

	// Ensure no trailing slash
	for len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("flush interval must not be negative")
	}

	return nil
}

// ServiceConfig converts the CLI configuration into the library form.
func (c *Config) ServiceConfig() service.Config {
	return service.Config{
		Component:     c.Component,
		LocalDir:      c.LocalDir,
		BufferSize:    c.BufferSize,
		FlushInterval: c.FlushInterval,
		ProbeTimeout:  c.ProbeTimeout,
		SendTimeout:   c.SendTimeout,
		ForceLocal:    c.ForceLocal,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
