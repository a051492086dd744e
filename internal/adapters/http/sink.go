package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/bft-labs/offramp/internal/domain"
	"github.com/bft-labs/offramp/internal/ports"
	"github.com/bft-labs/offramp/pkg/log"
)

const (
	eventsEndpoint = "/v1/events"
	healthEndpoint = "/v1/healthz"
)

// SinkConfig holds the settings for an HTTP event sink.
type SinkConfig struct {
	// BaseURL is the backend base URL without trailing slash.
	BaseURL string

	// AuthKey is the bearer token, empty to skip the Authorization header.
	AuthKey string

	// Component is reported in the X-Offramp-Component header so the
	// backend can attribute batches.
	Component string

	// SendTimeout bounds each Send call.
	SendTimeout time.Duration

	// ProbeTimeout bounds each HealthCheck call.
	ProbeTimeout time.Duration
}

// Sink implements ports.Sink over HTTP. It POSTs batches as a JSON
// array of payloads and probes a lightweight health endpoint.
type Sink struct {
	cfg    SinkConfig
	client ports.HTTPClient
	logger ports.Logger
}

// NewSink creates a new HTTP sink. A nil client falls back to a
// standard http.Client; the per-call timeouts come from cfg.
func NewSink(cfg SinkConfig, client ports.HTTPClient, logger ports.Logger) *Sink {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	for len(cfg.BaseURL) > 0 && cfg.BaseURL[len(cfg.BaseURL)-1] == '/' {
		cfg.BaseURL = cfg.BaseURL[:len(cfg.BaseURL)-1]
	}
	return &Sink{cfg: cfg, client: client, logger: logger}
}

// Send transmits a batch of item payloads in one POST.
func (s *Sink) Send(ctx context.Context, batch *domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	payloads := make([]json.RawMessage, len(batch.Items))
	for i, item := range batch.Items {
		payloads[i] = item.Payload
	}
	body, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+eventsEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.setAgentHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("batch sent",
		ports.Int("items", batch.Size()),
		ports.Uint64("last_seq", batch.LastSeq()),
	)
	return nil
}

// HealthCheck probes the backend health endpoint.
func (s *Sink) HealthCheck(ctx context.Context) error {
	if s.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProbeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+healthEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setAgentHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (s *Sink) setAgentHeaders(req *http.Request) {
	if s.cfg.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthKey)
	}
	req.Header.Set("X-Offramp-Component", s.cfg.Component)
	req.Header.Set("X-Agent-Hostname", hostname())
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
