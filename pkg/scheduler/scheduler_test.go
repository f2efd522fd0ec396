package scheduler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelmerpassos/ipet-api/pkg/ingest"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeFetcher struct {
	path    string
	err     error
	calls   atomic.Int32
	block   chan struct{}
	blockOn bool
}

func (f *fakeFetcher) Fetch(_ context.Context) (string, error) {
	f.calls.Add(1)
	if f.blockOn {
		<-f.block
	}
	return f.path, f.err
}

type fakeReconciler struct {
	summary *ingest.Summary
	err     error
	calls   atomic.Int32
}

func (f *fakeReconciler) Reconcile(_ context.Context, _ io.Reader) (*ingest.Summary, error) {
	f.calls.Add(1)
	return f.summary, f.err
}

func writeBaseFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base_offline.txt")
	require.NoError(t, os.WriteFile(path, []byte("1|2|20230615143000\n"), 0o644))
	return path
}

func TestRunCycle(t *testing.T) {
	fetcher := &fakeFetcher{path: writeBaseFile(t)}
	reconciler := &fakeReconciler{summary: &ingest.Summary{Lines: 1, Created: 1}}

	s := NewScheduler(fetcher, reconciler, DefaultConfig(), noopLogger())

	summary := s.runCycle(context.Background(), time.Now())
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, int32(1), reconciler.calls.Load())
	assert.Equal(t, StateIdle, s.State())
}

func TestRunCycleFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connect failed")}
	reconciler := &fakeReconciler{}

	s := NewScheduler(fetcher, reconciler, DefaultConfig(), noopLogger())

	summary := s.runCycle(context.Background(), time.Now())
	assert.Nil(t, summary)
	assert.Zero(t, reconciler.calls.Load())
	assert.Equal(t, StateIdle, s.State())
}

func TestRunCycleSkipsMisfiredTick(t *testing.T) {
	fetcher := &fakeFetcher{path: writeBaseFile(t)}
	reconciler := &fakeReconciler{summary: &ingest.Summary{}}

	s := NewScheduler(fetcher, reconciler, Config{MisfireGrace: time.Minute}, noopLogger())

	summary := s.runCycle(context.Background(), time.Now().Add(-2*time.Minute))
	assert.Nil(t, summary)
	assert.Zero(t, fetcher.calls.Load())
}

func TestRunCycleDropsOverlappingTick(t *testing.T) {
	fetcher := &fakeFetcher{
		path:    writeBaseFile(t),
		block:   make(chan struct{}),
		blockOn: true,
	}
	reconciler := &fakeReconciler{summary: &ingest.Summary{}}

	s := NewScheduler(fetcher, reconciler, DefaultConfig(), noopLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runCycle(context.Background(), time.Now())
	}()

	// Wait for the first cycle to enter fetching
	require.Eventually(t, func() bool {
		return s.State() == StateFetching
	}, time.Second, 5*time.Millisecond)

	// Second tick while the first cycle is still running is dropped
	summary := s.runCycle(context.Background(), time.Now())
	assert.Nil(t, summary)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	close(fetcher.block)
	wg.Wait()
	assert.Equal(t, StateIdle, s.State())
}

func TestRunLoopDropsTickFiredMidCycle(t *testing.T) {
	fetcher := &fakeFetcher{
		path:    writeBaseFile(t),
		block:   make(chan struct{}),
		blockOn: true,
	}
	reconciler := &fakeReconciler{summary: &ingest.Summary{}}

	s := NewScheduler(fetcher, reconciler, Config{Interval: 50 * time.Millisecond}, noopLogger())
	require.NoError(t, s.Start(context.Background()))

	// Hold the first cycle in fetch long enough for ticks to fire behind it,
	// then release it and stop before the next live tick.
	require.Eventually(t, func() bool {
		return fetcher.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	close(fetcher.block)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// The tick buffered during the blocked cycle must not run a second cycle
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, int32(1), reconciler.calls.Load())
}

func TestRunCycleSkipsTickOlderThanLastCompletion(t *testing.T) {
	fetcher := &fakeFetcher{path: writeBaseFile(t)}
	reconciler := &fakeReconciler{summary: &ingest.Summary{}}

	s := NewScheduler(fetcher, reconciler, DefaultConfig(), noopLogger())

	staleTick := time.Now().Add(-time.Millisecond)
	require.NotNil(t, s.runCycle(context.Background(), time.Now()))

	// A tick that fired before the previous cycle completed is dropped
	assert.Nil(t, s.runCycle(context.Background(), staleTick))
	assert.Equal(t, int32(1), fetcher.calls.Load())

	// A tick fired after completion runs normally
	require.NotNil(t, s.runCycle(context.Background(), time.Now()))
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestStartStop(t *testing.T) {
	fetcher := &fakeFetcher{path: writeBaseFile(t)}
	reconciler := &fakeReconciler{summary: &ingest.Summary{}}

	s := NewScheduler(fetcher, reconciler, Config{Interval: time.Hour}, noopLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	// The loop runs once immediately
	require.Eventually(t, func() bool {
		return fetcher.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	// Stopping again is a no-op
	require.NoError(t, s.Stop(ctx))
}
