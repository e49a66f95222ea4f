package sweep

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rpenumatsa/airsense-server/internal/observability"
)

// LocationSweeper runs one pipeline pass for a location
type LocationSweeper interface {
	Sweep(ctx context.Context, zipcode string) error
}

// Locker serializes sweeps per location. At most one sweep may be in flight
// for a location at a time, which preserves the alert dedup invariant.
type Locker interface {
	AcquireSweepLock(ctx context.Context, zipcode string, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context, zipcode string) error
}

// Scheduler triggers periodic sweeps across the monitored locations. Start
// and Stop are idempotent; the scheduler owns all of its run state.
type Scheduler struct {
	sweeper  LocationSweeper
	locker   Locker
	metrics  *observability.Metrics
	clock    clockwork.Clock
	interval time.Duration
	timeout  time.Duration
	zipcodes []string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a sweep scheduler over a fixed location set
func NewScheduler(sweeper LocationSweeper, locker Locker, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration, zipcodes []string) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		locker:   locker,
		metrics:  metrics,
		clock:    clock,
		interval: interval,
		timeout:  interval,
		zipcodes: zipcodes,
	}
}

// Start begins the periodic sweep loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.metrics.SweepRunning.Set(1)

	s.wg.Add(1)
	go s.run(ctx, s.stopCh)
}

// Stop halts the sweep loop and waits for any in-flight cycle to finish.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.metrics.SweepRunning.Set(0)
}

func (s *Scheduler) run(ctx context.Context, stopCh chan struct{}) {
	defer s.wg.Done()

	// First cycle runs immediately; later ones follow the ticker.
	s.runCycle(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.runCycle(ctx)
		}
	}
}

// runCycle sweeps every location sequentially. Failures are isolated: one
// location's error never prevents the remaining locations from running.
func (s *Scheduler) runCycle(ctx context.Context) {
	for _, zipcode := range s.zipcodes {
		if ctx.Err() != nil {
			return
		}
		s.sweepLocation(ctx, zipcode)
	}
}

func (s *Scheduler) sweepLocation(ctx context.Context, zipcode string) {
	acquired, err := s.locker.AcquireSweepLock(ctx, zipcode, s.interval)
	if err != nil {
		log.Printf("Sweep lock error for %s: %v", zipcode, err)
		s.metrics.SweepsTotal.WithLabelValues("error").Inc()
		return
	}
	if !acquired {
		// Another sweep for this location is still in flight.
		s.metrics.SweepsTotal.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := s.locker.ReleaseSweepLock(ctx, zipcode); err != nil {
			log.Printf("Failed to release sweep lock for %s: %v", zipcode, err)
		}
	}()

	sweepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.clock.Now()
	if err := s.sweeper.Sweep(sweepCtx, zipcode); err != nil {
		log.Printf("Sweep failed for %s (retrying next cycle): %v", zipcode, err)
		s.metrics.SweepsTotal.WithLabelValues("error").Inc()
		return
	}

	s.metrics.SweepDuration.Observe(s.clock.Since(start).Seconds())
	s.metrics.SweepsTotal.WithLabelValues("success").Inc()
}
