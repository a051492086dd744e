package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (OFFRAMP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("component", os.Getenv("OFFRAMP_COMPONENT"), &cfg.Component)
	s.setString("local-dir", os.Getenv("OFFRAMP_LOCAL_DIR"), &cfg.LocalDir)
	s.setString("service-url", os.Getenv("OFFRAMP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("OFFRAMP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("metrics-addr", os.Getenv("OFFRAMP_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("buffer-size", os.Getenv("OFFRAMP_BUFFER_SIZE"), &cfg.BufferSize); err != nil {
		return err
	}

	if err := s.setDuration("flush-interval", os.Getenv("OFFRAMP_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("probe-timeout", os.Getenv("OFFRAMP_PROBE_TIMEOUT"), &cfg.ProbeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("send-timeout", os.Getenv("OFFRAMP_SEND_TIMEOUT"), &cfg.SendTimeout); err != nil {
		return err
	}

	s.setBoolFromString("force-local", os.Getenv("OFFRAMP_FORCE_LOCAL"), &cfg.ForceLocal)
	s.setBoolFromString("once", os.Getenv("OFFRAMP_ONCE"), &cfg.Once)

	return nil
}
