package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bft-labs/offramp/internal/adapters/fs"
	"github.com/bft-labs/offramp/internal/domain"
	"github.com/bft-labs/offramp/internal/metrics"
	"github.com/bft-labs/offramp/internal/ports"
	"github.com/bft-labs/offramp/pkg/log"
)

// Service is the dual-mode wrapper any buffered component embeds.
//
// It probes the remote sink exactly once at construction, then
// buffers recorded items in memory and flushes them to the sink
// (remote mode) or the spill store (local mode). A single failed
// remote delivery downgrades the service to local mode for the rest
// of its life; there is no re-probing and no retry against the sink.
//
// Record never fails and never performs I/O on the caller path. When
// a background flush loop is running (FlushInterval > 0), a full
// buffer kicks the loop; otherwise the capacity flush runs inline on
// the recording goroutine.
type Service struct {
	cfg     Config
	sink    ports.Sink
	store   ports.Store
	logger  ports.Logger
	metrics bool
	decider *decider

	// flushMu serializes flushes. It linearizes the send-or-store
	// decision with the mode transition: once one flush has failed a
	// remote send and downgraded, no later flush can attempt another.
	flushMu sync.Mutex

	// mu guards mode, buffer, seq, and closed. Record holds it only
	// for the buffer append, never across I/O.
	mu     sync.Mutex
	mode   domain.Mode
	buffer []domain.Item
	seq    uint64
	closed bool

	sched *scheduler
}

// New constructs a Service, runs the connectivity probe if a sink was
// supplied, and starts the background flush loop when FlushInterval
// is positive.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.store == nil {
		o.store = fs.NewSpillStore(cfg.LocalDir, cfg.Component)
	}

	s := &Service{
		cfg:     cfg,
		sink:    o.sink,
		store:   o.store,
		logger:  o.logger,
		metrics: o.metrics,
		decider: &decider{},
		buffer:  make([]domain.Item, 0, cfg.BufferSize),
	}

	// Decide the mode once. No sink means pure offline operation and
	// the probe is never attempted.
	switch {
	case s.sink == nil || cfg.ForceLocal:
		s.mode = domain.ModeLocal
	default:
		s.mode = s.decider.decide(context.Background(), s.sink.HealthCheck, cfg.ProbeTimeout)
		if s.mode == domain.ModeLocal {
			s.logger.Warn("connectivity probe failed, starting in local-only mode",
				ports.String("component", cfg.Component),
				ports.Duration("probe_timeout", cfg.ProbeTimeout),
			)
		}
	}

	s.logger.Info("service created",
		ports.String("component", cfg.Component),
		ports.String("mode", s.mode.String()),
		ports.Int("buffer_size", cfg.BufferSize),
	)

	if cfg.FlushInterval > 0 {
		s.sched = newScheduler(cfg.FlushInterval, s.flushForScheduler, s.logger)
	}

	return s, nil
}

// Record buffers one item. It never fails: payloads that cannot be
// encoded are logged and skipped, and everything else always succeeds
// locally. Safe for concurrent use.
func (s *Service) Record(v interface{}) {
	payload, err := toPayload(v)
	if err != nil {
		s.logger.Warn("dropping unencodable item",
			ports.String("component", s.cfg.Component),
			ports.Err(err),
		)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.buffer = append(s.buffer, domain.Item{
		Payload:   payload,
		CreatedAt: time.Now(),
		Seq:       s.seq,
	})
	full := len(s.buffer) >= s.cfg.BufferSize
	s.mu.Unlock()

	if s.metrics {
		metrics.RecordItem(s.cfg.Component)
	}

	if full {
		if s.sched != nil {
			s.sched.Kick()
		} else {
			_, _ = s.Flush(context.Background())
		}
	}
}

func toPayload(v interface{}) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return append(json.RawMessage(nil), raw...), nil
	}
	return json.Marshal(v)
}

// Flush delivers the buffered items to the sink or the spill store.
// A failed remote send downgrades the service to local mode and
// delivers the same batch locally in the same call, so the batch is
// sent at most once and never lost. Safe to call concurrently with
// Record and with other flushes.
func (s *Service) Flush(ctx context.Context) (domain.FlushReport, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	return s.flushLocked(ctx)
}

// flushLocked does the work of Flush. Caller holds flushMu.
func (s *Service) flushLocked(ctx context.Context) (domain.FlushReport, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.FlushReport{}, domain.ErrClosed
	}
	batch := s.swapBufferLocked()
	mode := s.mode
	s.mu.Unlock()

	if batch.Empty() {
		return domain.FlushReport{Path: domain.FlushNone, Mode: mode}, nil
	}

	if mode == domain.ModeRemote {
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		err := s.sink.Send(sendCtx, batch)
		cancel()
		if err == nil {
			if s.metrics {
				metrics.RecordFlush(s.cfg.Component, domain.FlushRemote.String(), batch.Size())
			}
			return domain.FlushReport{
				Path:      domain.FlushRemote,
				Mode:      domain.ModeRemote,
				Delivered: batch.Size(),
			}, nil
		}
		s.downgrade(err)
		report, spillErr := s.spill(ctx, batch)
		report.Downgraded = true
		return report, spillErr
	}

	return s.spill(ctx, batch)
}

// swapBufferLocked atomically takes the buffer contents. Caller holds
// s.mu. No item can be both retained and forwarded: the slice handed
// out is the only reference to those items.
func (s *Service) swapBufferLocked() *domain.Batch {
	batch := &domain.Batch{Items: s.buffer}
	s.buffer = make([]domain.Item, 0, s.cfg.BufferSize)
	return batch
}

// downgrade performs the one-way remote-to-local transition.
// Logged exactly once per instance; the mode field is the latch.
func (s *Service) downgrade(cause error) {
	s.mu.Lock()
	already := s.mode == domain.ModeLocal
	s.mode = domain.ModeLocal
	s.mu.Unlock()
	if already {
		return
	}

	s.logger.Warn("remote delivery failed, switched to local-only mode permanently",
		ports.String("component", s.cfg.Component),
		ports.Err(cause),
	)
	if s.metrics {
		metrics.RecordFlushError(s.cfg.Component, domain.FlushRemote.String())
		metrics.RecordDowngrade(s.cfg.Component)
	}
}

// spill delivers a batch to the local store. On append failure the
// batch is re-queued at the front of the buffer; overflow drops the
// oldest items, the only tolerated loss path.
func (s *Service) spill(ctx context.Context, batch *domain.Batch) (domain.FlushReport, error) {
	if err := s.store.Append(ctx, batch); err != nil {
		s.logger.Error("local append failed, re-queueing batch",
			ports.String("component", s.cfg.Component),
			ports.Int("items", batch.Size()),
			ports.Err(err),
		)
		if s.metrics {
			metrics.RecordFlushError(s.cfg.Component, domain.FlushLocal.String())
		}
		requeued, dropped := s.requeue(batch)
		if dropped > 0 {
			s.logger.Warn("buffer overflow while re-queueing, dropped oldest items",
				ports.String("component", s.cfg.Component),
				ports.Int("dropped", dropped),
			)
			if s.metrics {
				metrics.RecordDrop(s.cfg.Component, dropped)
			}
		}
		return domain.FlushReport{
			Path:     domain.FlushLocal,
			Mode:     s.Mode(),
			Requeued: requeued,
			Dropped:  dropped,
		}, nil
	}

	if s.metrics {
		metrics.RecordFlush(s.cfg.Component, domain.FlushLocal.String(), batch.Size())
	}
	return domain.FlushReport{
		Path:      domain.FlushLocal,
		Mode:      s.Mode(),
		Delivered: batch.Size(),
	}, nil
}

// requeue puts a failed batch back at the front of the buffer,
// trimming from the oldest end to stay within BufferSize.
func (s *Service) requeue(batch *domain.Batch) (requeued, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	combined := make([]domain.Item, 0, len(batch.Items)+len(s.buffer))
	combined = append(combined, batch.Items...)
	combined = append(combined, s.buffer...)
	if len(combined) > s.cfg.BufferSize {
		dropped = len(combined) - s.cfg.BufferSize
		combined = combined[dropped:]
	}
	s.buffer = combined
	return len(batch.Items) - dropped, dropped
}

// flushForScheduler adapts Flush for the background loop.
func (s *Service) flushForScheduler(ctx context.Context) error {
	report, err := s.Flush(ctx)
	if err != nil {
		return err
	}
	if report.Delivered > 0 {
		s.logger.Debug("background flush delivered",
			ports.String("component", s.cfg.Component),
			ports.String("path", report.Path.String()),
			ports.Int("items", report.Delivered),
		)
	}
	return nil
}

// Mode returns the current delivery mode.
func (s *Service) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Probe returns the recorded connectivity attempt, if any.
func (s *Service) Probe() domain.Probe {
	return s.decider.last()
}

// Pending returns the number of items currently buffered in memory.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Component returns the configured component name.
func (s *Service) Component() string {
	return s.cfg.Component
}

// Healthy reports whether the service can keep accepting items.
// Local mode has no external dependency and is always healthy.
// Remote mode additionally requires a writable spill path, the
// fallback every remote service must be able to take.
func (s *Service) Healthy() bool {
	if s.Mode() == domain.ModeLocal {
		return true
	}
	return s.store.Health()
}

// SetFlushInterval changes the background flush interval at runtime.
// No-op when the loop is disabled.
func (s *Service) SetFlushInterval(d time.Duration) {
	if s.sched != nil {
		s.sched.SetInterval(d)
	}
}

// Shutdown stops the background loop, performs a final synchronous
// flush, and marks the service closed. Further Record calls are
// dropped and further flushes return ErrClosed. Safe to call once;
// subsequent calls return ErrClosed.
func (s *Service) Shutdown(ctx context.Context) (domain.FlushReport, error) {
	if s.sched != nil {
		s.sched.Stop()
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	report, err := s.flushLocked(ctx)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("service shut down",
		ports.String("component", s.cfg.Component),
		ports.String("mode", report.Mode.String()),
		ports.Int("final_flush_items", report.Delivered),
	)
	return report, nil
}
