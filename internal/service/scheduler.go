package service

import (
	"context"
	"sync"
	"time"

	"instacord/internal/constants"
	"instacord/internal/models"
	"instacord/internal/retry"

	"github.com/sirupsen/logrus"
)

// Janitor prunes old archive records.
type Janitor interface {
	CleanupOldRecords(ctx context.Context, retentionDays int) error
}

// SchedulerConfig tunes the poll timers. Zero values use defaults.
type SchedulerConfig struct {
	AcceptedInterval time.Duration
	PendingInterval  time.Duration
	KeepAlive        time.Duration
	InitialRunDelay  time.Duration
	CleanupInterval  time.Duration
	RetentionDays    int
	Retry            models.RetryConfig
}

func (c *SchedulerConfig) applyDefaults() {
	if c.AcceptedInterval <= 0 {
		c.AcceptedInterval = constants.AcceptedPollInterval
	}
	if c.PendingInterval <= 0 {
		c.PendingInterval = constants.PendingPollInterval
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = constants.KeepAliveInterval
	}
	if c.InitialRunDelay <= 0 {
		c.InitialRunDelay = constants.InitialRunDelay
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = constants.CleanupInterval
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
}

// Scheduler owns the process-wide timers. All poll cycles are
// serialized through one queue consumed by a single worker, so the
// accepted and pending cycles never interleave even when a cycle
// overruns its interval.
type Scheduler struct {
	processor *InboxProcessor
	source    SourceClient
	janitor   Janitor
	logger    *logrus.Logger
	cfg       SchedulerConfig

	queue   chan models.InboxCategory
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler. janitor may be nil when no
// archive is configured.
func NewScheduler(processor *InboxProcessor, source SourceClient, janitor Janitor, logger *logrus.Logger, cfg SchedulerConfig) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{
		processor: processor,
		source:    source,
		janitor:   janitor,
		logger:    logger,
		cfg:       cfg,
		// Room for one queued run per category; anything beyond that
		// is redundant and dropped.
		queue: make(chan models.InboxCategory, 4),
	}
}

// Start launches the worker and timers. Callers must have completed
// both platform logins first.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler is already running")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.wg.Add(2)
	go s.worker(ctx)
	go s.timers(ctx)

	s.logger.WithFields(logrus.Fields{
		"accepted_interval": s.cfg.AcceptedInterval,
		"pending_interval":  s.cfg.PendingInterval,
		"keep_alive":        s.cfg.KeepAlive,
	}).Info("Scheduler started")
}

// Stop cancels the timers and waits for the worker to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case category := <-s.queue:
			if err := s.processor.ProcessCycle(ctx, category); err != nil && ctx.Err() == nil {
				s.logger.WithField("category", category).WithError(err).Warn("Poll cycle failed")
			}
		}
	}
}

func (s *Scheduler) timers(ctx context.Context) {
	defer s.wg.Done()

	initial := time.NewTimer(s.cfg.InitialRunDelay)
	defer initial.Stop()
	accepted := time.NewTicker(s.cfg.AcceptedInterval)
	defer accepted.Stop()
	pending := time.NewTicker(s.cfg.PendingInterval)
	defer pending.Stop()
	keepAlive := time.NewTicker(s.cfg.KeepAlive)
	defer keepAlive.Stop()
	cleanup := time.NewTicker(s.cfg.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-initial.C:
			s.enqueue(models.CategoryAccepted)
			s.enqueue(models.CategoryPending)
		case <-accepted.C:
			s.enqueue(models.CategoryAccepted)
		case <-pending.C:
			s.enqueue(models.CategoryPending)
		case <-keepAlive.C:
			s.keepSessionAlive(ctx)
		case <-cleanup.C:
			s.runCleanup(ctx)
		}
	}
}

func (s *Scheduler) enqueue(category models.InboxCategory) {
	select {
	case s.queue <- category:
	default:
		s.logger.WithField("category", category).Debug("Cycle queue full, dropping tick")
	}
}

// keepSessionAlive probes the source session with a cheap read and
// re-authenticates on failure. A failed re-login is not fatal; the
// next probe tries again.
func (s *Scheduler) keepSessionAlive(ctx context.Context) {
	s.logger.Debug("Refreshing source session")

	err := s.source.Timeline(ctx)
	if err == nil {
		return
	}
	// Any probe failure triggers re-authentication: sessions can die
	// through surfaces other than a clean 401, and a wasted login
	// against a healthy session is harmless.
	s.logger.WithError(err).Warn("Keep-alive probe failed, attempting re-login")

	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(s.cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(s.cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  s.cfg.Retry.MaxAttempts,
		Jitter:       true,
	})
	if err := backoff.Retry(ctx, func() error {
		return s.source.Login(ctx)
	}); err != nil {
		s.logger.WithError(err).Error("Re-login failed, will retry on next probe")
		return
	}
	s.logger.Info("Re-logged into source platform")
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if s.janitor == nil {
		return
	}
	if err := s.janitor.CleanupOldRecords(ctx, s.cfg.RetentionDays); err != nil {
		s.logger.WithError(err).Error("Failed to cleanup old archive records")
	} else {
		s.logger.WithField("retentionDays", s.cfg.RetentionDays).Info("Archive cleanup completed")
	}
}
