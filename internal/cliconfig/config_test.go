package cliconfig

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Component != "events" {
		t.Errorf("Component = %q, want events", cfg.Component)
	}
	if cfg.BufferSize != 100 {
		t.Errorf("BufferSize = %d, want 100", cfg.BufferSize)
	}
	if cfg.FlushInterval != 10*time.Second {
		t.Errorf("FlushInterval = %v, want 10s", cfg.FlushInterval)
	}
	if cfg.ProbeTimeout != 2*time.Second {
		t.Errorf("ProbeTimeout = %v, want 2s", cfg.ProbeTimeout)
	}
	if cfg.SendTimeout != 5*time.Second {
		t.Errorf("SendTimeout = %v, want 5s", cfg.SendTimeout)
	}
}

func TestValidateRequiresComponent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Component = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted an empty component")
	}
}

func TestValidateDerivesLocalDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Component = "telemetry"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.LocalDir == "" {
		t.Error("LocalDir not derived")
	}
	if !strings.Contains(cfg.LocalDir, "telemetry") {
		t.Errorf("LocalDir = %q, want component in path", cfg.LocalDir)
	}
}

func TestValidateTrimsServiceURLSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceURL = "https://api.example.com/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.ServiceURL != "https://api.example.com" {
		t.Errorf("ServiceURL = %q, want trailing slash removed", cfg.ServiceURL)
	}
}

func TestValidateRejectsNonPositiveBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted buffer size 0")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Component = "audit"
	cfg.LocalDir = "/tmp/audit"
	cfg.ForceLocal = true

	sc := cfg.ServiceConfig()
	if sc.Component != "audit" || sc.LocalDir != "/tmp/audit" || !sc.ForceLocal {
		t.Errorf("ServiceConfig = %+v, want CLI fields carried over", sc)
	}
	if sc.BufferSize != cfg.BufferSize || sc.FlushInterval != cfg.FlushInterval {
		t.Error("ServiceConfig lost timing fields")
	}
}
