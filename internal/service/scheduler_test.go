package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"instacord/internal/dedup"
	apperrors "instacord/internal/errors"
	"instacord/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource is a goroutine-safe source stub for scheduler tests,
// where the worker goroutine races the asserting test goroutine.
type countingSource struct {
	inboxCalls    atomic.Int64
	pendingCalls  atomic.Int64
	loginCalls    atomic.Int64
	probeFails    atomic.Bool
	probeDegraded atomic.Bool
	inboxDelay    time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
}

func (c *countingSource) Login(ctx context.Context) error {
	c.loginCalls.Add(1)
	return nil
}

func (c *countingSource) enter() {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()
}

func (c *countingSource) leave() {
	c.mu.Lock()
	c.active--
	c.mu.Unlock()
}

func (c *countingSource) concurrencyPeak() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}

func (c *countingSource) Inbox(ctx context.Context) ([]models.Thread, error) {
	c.enter()
	defer c.leave()
	if c.inboxDelay > 0 {
		time.Sleep(c.inboxDelay)
	}
	c.inboxCalls.Add(1)
	return nil, nil
}

func (c *countingSource) Pending(ctx context.Context) ([]models.Thread, error) {
	c.enter()
	defer c.leave()
	if c.inboxDelay > 0 {
		time.Sleep(c.inboxDelay)
	}
	c.pendingCalls.Add(1)
	return nil, nil
}

func (c *countingSource) ThreadItems(ctx context.Context, threadID string) ([]models.RawItem, error) {
	return nil, nil
}

func (c *countingSource) ApproveThread(ctx context.Context, threadID string) error {
	return nil
}

func (c *countingSource) Timeline(ctx context.Context) error {
	if c.probeFails.Load() {
		return apperrors.NewAuthError("login_required")
	}
	if c.probeDegraded.Load() {
		return errors.New("temporarily unreachable")
	}
	return nil
}

type countingJanitor struct {
	calls atomic.Int64
}

func (c *countingJanitor) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	c.calls.Add(1)
	return nil
}

func newTestScheduler(source *countingSource, janitor Janitor, cfg SchedulerConfig) *Scheduler {
	router := NewChannelRouter(newMockDirectory(), "guild-1", "", testLogger())
	p := NewInboxProcessor(source, &mockDeliverer{}, router, NewThreadFilter(nil), dedup.NewLedger(), nil, testLogger(), fastOptions())
	return NewScheduler(p, source, janitor, testLogger(), cfg)
}

func TestScheduler_InitialRunPollsBothCategories(t *testing.T) {
	source := &countingSource{}
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  5 * time.Millisecond,
		AcceptedInterval: time.Hour,
		PendingInterval:  time.Hour,
		KeepAlive:        time.Hour,
		CleanupInterval:  time.Hour,
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return source.inboxCalls.Load() >= 1 && source.pendingCalls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond, "initial run must cover both inbox categories")
}

func TestScheduler_RecurringAcceptedPolls(t *testing.T) {
	source := &countingSource{}
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  time.Hour,
		AcceptedInterval: 10 * time.Millisecond,
		PendingInterval:  time.Hour,
		KeepAlive:        time.Hour,
		CleanupInterval:  time.Hour,
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return source.inboxCalls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_CyclesNeverOverlap(t *testing.T) {
	source := &countingSource{inboxDelay: 20 * time.Millisecond}
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  time.Millisecond,
		AcceptedInterval: 5 * time.Millisecond,
		PendingInterval:  7 * time.Millisecond,
		KeepAlive:        time.Hour,
		CleanupInterval:  time.Hour,
	})

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return source.inboxCalls.Load()+source.pendingCalls.Load() >= 4
	}, 3*time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, source.concurrencyPeak(), "poll cycles must be serialized")
}

func TestScheduler_KeepAliveReloginOnProbeFailure(t *testing.T) {
	source := &countingSource{}
	source.probeFails.Store(true)
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  time.Hour,
		AcceptedInterval: time.Hour,
		PendingInterval:  time.Hour,
		KeepAlive:        10 * time.Millisecond,
		CleanupInterval:  time.Hour,
		Retry:            models.RetryConfig{InitialBackoffMs: 1, MaxBackoffMs: 2, MaxAttempts: 2},
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return source.loginCalls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond, "failed probe must trigger re-login")
}

func TestScheduler_AnyProbeFailureTriggersRelogin(t *testing.T) {
	// Sessions can expire through surfaces other than a clean 401
	// (challenge responses, connection resets), so a plain probe
	// failure must still force re-authentication.
	source := &countingSource{}
	source.probeDegraded.Store(true)
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  time.Hour,
		AcceptedInterval: time.Hour,
		PendingInterval:  time.Hour,
		KeepAlive:        10 * time.Millisecond,
		CleanupInterval:  time.Hour,
		Retry:            models.RetryConfig{InitialBackoffMs: 1, MaxBackoffMs: 2, MaxAttempts: 2},
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return source.loginCalls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond, "a non-auth probe failure must still force a re-login")
}

func TestScheduler_CleanupRunsWithJanitor(t *testing.T) {
	source := &countingSource{}
	janitor := &countingJanitor{}
	s := newTestScheduler(source, janitor, SchedulerConfig{
		InitialRunDelay:  time.Hour,
		AcceptedInterval: time.Hour,
		PendingInterval:  time.Hour,
		KeepAlive:        time.Hour,
		CleanupInterval:  10 * time.Millisecond,
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return janitor.calls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	source := &countingSource{}
	s := newTestScheduler(source, nil, SchedulerConfig{
		InitialRunDelay:  time.Hour,
		AcceptedInterval: time.Hour,
		PendingInterval:  time.Hour,
		KeepAlive:        time.Hour,
		CleanupInterval:  time.Hour,
	})

	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
