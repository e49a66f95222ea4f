package sweep

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpenumatsa/airsense-server/internal/observability"
)

type fakeSweeper struct {
	mu     sync.Mutex
	swept  []string
	errFor map[string]error
	done   chan string
}

func newFakeSweeper() *fakeSweeper {
	return &fakeSweeper{
		errFor: make(map[string]error),
		done:   make(chan string, 64),
	}
}

func (f *fakeSweeper) Sweep(ctx context.Context, zipcode string) error {
	f.mu.Lock()
	f.swept = append(f.swept, zipcode)
	f.mu.Unlock()
	f.done <- zipcode
	return f.errFor[zipcode]
}

func (f *fakeSweeper) sweptLocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.swept...)
}

// waitForSweeps blocks until n sweeps have completed or the test times out
func (f *fakeSweeper) waitForSweeps(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for sweep %d of %d", i+1, n)
		}
	}
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
	releases int
	err      error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) AcquireSweepLock(ctx context.Context, zipcode string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.acquires++
	if f.held[zipcode] {
		return false, nil
	}
	f.held[zipcode] = true
	return true, nil
}

func (f *fakeLocker) ReleaseSweepLock(ctx context.Context, zipcode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	delete(f.held, zipcode)
	return nil
}

func TestSchedulerRunsImmediateCycle(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001", "94103"})

	s.Start(context.Background())
	defer s.Stop()

	sweeper.waitForSweeps(t, 2)
	assert.Equal(t, []string{"10001", "94103"}, sweeper.sweptLocations())
}

func TestSchedulerTicksOnInterval(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001"})

	s.Start(context.Background())
	defer s.Stop()

	sweeper.waitForSweeps(t, 1)

	// The run loop must be blocked on the ticker before we advance.
	clock.BlockUntil(1)
	clock.Advance(15 * time.Minute)
	sweeper.waitForSweeps(t, 1)

	clock.BlockUntil(1)
	clock.Advance(15 * time.Minute)
	sweeper.waitForSweeps(t, 1)

	assert.Equal(t, []string{"10001", "10001", "10001"}, sweeper.sweptLocations())
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001"})

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // no-op, must not spawn a second loop
	sweeper.waitForSweeps(t, 1)

	s.Stop()
	s.Stop() // no-op

	assert.Equal(t, []string{"10001"}, sweeper.sweptLocations())
}

func TestSchedulerFailureIsolation(t *testing.T) {
	sweeper := newFakeSweeper()
	sweeper.errFor["10001"] = fmt.Errorf("database unavailable")
	locker := newFakeLocker()
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001", "94103"})

	s.Start(context.Background())
	defer s.Stop()

	// The failing location must not prevent the next one from sweeping.
	sweeper.waitForSweeps(t, 2)
	assert.Equal(t, []string{"10001", "94103"}, sweeper.sweptLocations())

	// Locks are released even on failure.
	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Equal(t, 2, locker.releases)
	assert.Empty(t, locker.held)
}

func TestSchedulerSkipsHeldLock(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	locker.held["10001"] = true
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001", "94103"})

	s.Start(context.Background())
	defer s.Stop()

	sweeper.waitForSweeps(t, 1)
	assert.Equal(t, []string{"94103"}, sweeper.sweptLocations())
}

func TestSchedulerLockErrorDoesNotSweep(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	locker.err = fmt.Errorf("redis: connection refused")
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001"})

	s.Start(context.Background())

	// Let the immediate cycle finish, then stop and verify nothing ran.
	clock.BlockUntil(1)
	s.Stop()
	assert.Empty(t, sweeper.sweptLocations())
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	sweeper := newFakeSweeper()
	locker := newFakeLocker()
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sweeper, locker, observability.NewMetricsForTesting(), clock, 15*time.Minute, []string{"10001"})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	sweeper.waitForSweeps(t, 1)

	cancel()
	s.Stop()
	require.Len(t, sweeper.sweptLocations(), 1)
}
