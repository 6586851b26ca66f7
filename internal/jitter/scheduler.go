package jitter

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Scheduler computes randomized per-request delays.
// It is safe for concurrent use.
type Scheduler struct {
	max time.Duration

	rng *rand.Rand
	mu  sync.Mutex
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRand makes the scheduler draw from r instead of the global source.
func WithRand(r *rand.Rand) SchedulerOption {
	return func(s *Scheduler) {
		s.rng = r
	}
}

// NewScheduler creates a scheduler with the given upper bound.
// A non-positive max disables the delay.
func NewScheduler(maxDelay time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{max: maxDelay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextDelay returns a delay drawn uniformly from [0, max).
func (s *Scheduler) NextDelay() time.Duration {
	if s.max <= 0 {
		return 0
	}
	if s.rng == nil {
		return time.Duration(rand.Int64N(int64(s.max))) //nolint:gosec // not security sensitive
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rng.Int64N(int64(s.max)))
}

// Max returns the configured upper bound.
func (s *Scheduler) Max() time.Duration {
	return s.max
}
