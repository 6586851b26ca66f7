package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linkprobe/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the concurrency cap used when none is configured.
const DefaultConcurrency = 5

// BatchFetcher probes many URLs concurrently under a fixed cap.
//
// Design decision: We use errgroup with SetLimit instead of a worker pool
// with a jobs channel because:
// 1. SetLimit is the concurrency cap, so there is no pool to size or drain
// 2. Each goroutine writes only its own index, so results need no locking
// 3. Stopping the loop on ctx.Err() is enough to stop launching new probes
type BatchFetcher struct {
	prober      *Prober
	concurrency int
	logger      *slog.Logger
	observers   []Observer
}

// BatchOption configures a BatchFetcher.
type BatchOption func(*BatchFetcher)

// WithConcurrency sets the maximum number of in-flight probes.
// Non-positive values keep DefaultConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchFetcher) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchFetcher) {
		b.logger = logger
	}
}

// WithObservers registers observers notified of every outcome.
func WithObservers(observers ...Observer) BatchOption {
	return func(b *BatchFetcher) {
		b.observers = append(b.observers, observers...)
	}
}

// NewBatchFetcher creates a BatchFetcher around prober.
func NewBatchFetcher(prober *Prober, opts ...BatchOption) *BatchFetcher {
	b := &BatchFetcher{
		prober:      prober,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Concurrency returns the configured cap.
func (b *BatchFetcher) Concurrency() int {
	return b.concurrency
}

// FetchAll probes every URL and returns one outcome per input, in input
// order. At most Concurrency probes are in flight at any time. Once ctx
// ends no new probe is started and the remaining URLs get Canceled
// outcomes.
//
// Design decision: Goroutines always return nil. A probe failure is data
// for the fallback phase, not a reason to cancel sibling probes the way an
// errgroup.WithContext error would.
func (b *BatchFetcher) FetchAll(ctx context.Context, urls []string) []model.ProbeOutcome {
	b.logger.Info("starting batch fetch",
		"total_urls", len(urls),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	// Each goroutine owns exactly one index.
	outcomes := make([]model.ProbeOutcome, len(urls))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	launched := 0
	for i, rawURL := range urls {
		if ctx.Err() != nil {
			break
		}
		launched++
		g.Go(func() error {
			outcome := b.prober.Probe(ctx, rawURL, model.AttemptBatch)
			outcomes[i] = outcome
			b.report(outcome)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	for i := launched; i < len(urls); i++ {
		outcome := canceledOutcome(urls[i], ctx.Err(), model.AttemptBatch)
		outcomes[i] = outcome
		b.report(outcome)
	}

	b.logger.Info("batch fetch complete",
		"total_urls", len(urls),
		"launched", launched,
		"elapsed", time.Since(startTime),
	)
	return outcomes
}

func (b *BatchFetcher) report(outcome model.ProbeOutcome) {
	switch {
	case outcome.Failed():
		b.logger.Debug("probe failed",
			"url", outcome.URL,
			"kind", outcome.Err.Kind.String(),
			"error", outcome.Err,
		)
	default:
		b.logger.Debug("probe answered",
			"url", outcome.URL,
			"status", outcome.StatusCode,
			"profile", outcome.Profile,
		)
	}
	notify(b.observers, outcome)
}
