package jitter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates requests: an optional token bucket first, then a jitter delay.
type Pacer struct {
	scheduler *Scheduler
	limiter   *rate.Limiter
}

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// WithRateLimit caps the request rate at perSecond with the given burst.
// A non-positive perSecond leaves the pacer unlimited.
func WithRateLimit(perSecond float64, burst int) PacerOption {
	return func(p *Pacer) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewPacer creates a pacer around scheduler. A nil scheduler means no jitter.
func NewPacer(scheduler *Scheduler, opts ...PacerOption) *Pacer {
	if scheduler == nil {
		scheduler = NewScheduler(0)
	}
	p := &Pacer{scheduler: scheduler}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until the request may be sent and returns the jitter delay
// that was applied. It returns early with ctx.Err() if ctx ends.
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	delay := p.scheduler.NextDelay()
	if delay <= 0 {
		return 0, ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}

// Limited reports whether a rate limit is configured.
func (p *Pacer) Limited() bool {
	return p.limiter != nil
}
