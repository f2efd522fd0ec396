package scheduler

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/kelmerpassos/ipet-api/pkg/ingest"
	"github.com/kelmerpassos/ipet-api/pkg/metrics"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

var (
	// ErrSchedulerAlreadyRunning is returned when trying to start an already running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler already running")
)

const (
	// DefaultInterval is the default time between sync cycles
	DefaultInterval = 20 * time.Second

	// DefaultMisfireGrace is how stale a tick may be before it is skipped
	DefaultMisfireGrace = 15 * time.Minute
)

// Cycle states. Transitions always pass through fetching before reconciling.
const (
	StateIdle int32 = iota
	StateFetching
	StateReconciling
)

// FileFetcher downloads the offline base file and returns its local path.
type FileFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// FileReconciler applies the downloaded file to the association store.
type FileReconciler interface {
	Reconcile(ctx context.Context, file io.Reader) (*ingest.Summary, error)
}

// Config holds configuration for the sync scheduler
type Config struct {
	// JobName identifies the job in logs
	JobName string

	// Interval is how often to run a sync cycle
	Interval time.Duration

	// MisfireGrace is the maximum tick staleness before the cycle is skipped
	MisfireGrace time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobName:      "offline-base-sync",
		Interval:     DefaultInterval,
		MisfireGrace: DefaultMisfireGrace,
	}
}

// Scheduler periodically fetches and reconciles the offline base file.
// Cycles never overlap: a tick that arrives while a cycle is running is
// dropped.
type Scheduler struct {
	fetcher    FileFetcher
	reconciler FileReconciler
	config     Config
	logger     ectologger.Logger

	state atomic.Int32

	// lastDone holds the completion time of the previous cycle in unix
	// nanoseconds. Ticks older than it were buffered by the ticker while
	// that cycle ran and are dropped.
	lastDone atomic.Int64

	// Coordination
	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	mu       sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(
	fetcher FileFetcher,
	reconciler FileReconciler,
	config Config,
	logger ectologger.Logger,
) *Scheduler {
	// Apply defaults
	if config.JobName == "" {
		config.JobName = "offline-base-sync"
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.MisfireGrace <= 0 {
		config.MisfireGrace = DefaultMisfireGrace
	}

	return &Scheduler{
		fetcher:    fetcher,
		reconciler: reconciler,
		config:     config,
		logger:     logger,
		stopCh:     make(chan struct{}),
		stoppedC:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "Scheduler.Start")
	defer span.End()

	s.logger.WithContext(ctx).Infof("Starting %s scheduler: interval=%s misfire_grace=%s",
		s.config.JobName, s.config.Interval, s.config.MisfireGrace)

	go s.runLoop(ctx)

	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.WithContext(ctx).Infof("Stopping %s scheduler...", s.config.JobName)

	close(s.stopCh)

	select {
	case <-s.stoppedC:
		s.logger.WithContext(ctx).Infof("%s scheduler stopped gracefully", s.config.JobName)
	case <-ctx.Done():
		s.logger.WithContext(ctx).Warnf("%s scheduler shutdown timed out", s.config.JobName)
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// State returns the current cycle state
func (s *Scheduler) State() int32 {
	return s.state.Load()
}

// runLoop ticks sync cycles until stopped
func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.stoppedC)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.runCycle(ctx, time.Now())

	for {
		select {
		case <-s.stopCh:
			s.logger.WithContext(ctx).Debug("Scheduler run loop stopping")
			return
		case tickTime := <-ticker.C:
			s.runCycle(ctx, tickTime)
		}
	}
}

// runCycle runs a single fetch and reconcile cycle. Returns the summary for
// the cycle, or nil when the cycle was skipped or failed before reconciling.
func (s *Scheduler) runCycle(ctx context.Context, tickTime time.Time) *ingest.Summary {
	if age := time.Since(tickTime); age > s.config.MisfireGrace {
		s.logger.WithContext(ctx).Warnf("Skipping misfired %s tick: %s late", s.config.JobName, age)
		return nil
	}

	// A tick that fired while the previous cycle ran sits buffered in the
	// ticker channel with a fire time older than that cycle's completion.
	// Drop it instead of running a back-to-back cycle.
	if done := s.lastDone.Load(); done > 0 && tickTime.UnixNano() < done {
		s.logger.WithContext(ctx).Warnf("Skipping %s tick: fired during the previous cycle", s.config.JobName)
		return nil
	}

	// Only one cycle at a time; a tick during a running cycle is dropped.
	if !s.state.CompareAndSwap(StateIdle, StateFetching) {
		s.logger.WithContext(ctx).Warnf("Skipping %s tick: previous cycle still running", s.config.JobName)
		return nil
	}
	defer func() {
		s.lastDone.Store(time.Now().UnixNano())
		s.state.Store(StateIdle)
	}()

	ctx, span := tracing.StartSpan(ctx, "Scheduler.runCycle")
	defer span.End()

	start := time.Now()
	s.logger.WithContext(ctx).Debugf("Running %s cycle", s.config.JobName)

	path, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues(metrics.CycleFetchFailed).Inc()
		s.logger.WithContext(ctx).WithError(err).Error("Failed to fetch offline base")
		return nil
	}

	s.state.Store(StateReconciling)

	file, err := os.Open(path)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues(metrics.CycleSyncFailed).Inc()
		s.logger.WithContext(ctx).WithError(err).Error("Failed to open offline base file")
		return nil
	}
	defer file.Close()

	summary, err := s.reconciler.Reconcile(ctx, file)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues(metrics.CycleSyncFailed).Inc()
		s.logger.WithContext(ctx).WithError(err).Error("Failed to reconcile offline base")
		return summary
	}

	duration := time.Since(start)
	metrics.SyncCyclesTotal.WithLabelValues(metrics.CycleSuccess).Inc()
	metrics.SyncCycleDuration.Observe(duration.Seconds())

	s.logger.WithContext(ctx).Infof("%s cycle completed: created=%d duplicates=%d unresolved=%d parse_errors=%d failed=%d duration=%s",
		s.config.JobName, summary.Created, summary.Duplicates, summary.Unresolved, summary.ParseErrors, summary.Failed, duration)

	return summary
}
