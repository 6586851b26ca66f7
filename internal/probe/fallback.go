package probe

import (
	"context"
	"log/slog"

	"github.com/nao1215/linkprobe/internal/model"
)

// FallbackRetrier re-probes failed URLs one at a time.
type FallbackRetrier struct {
	prober    *Prober
	logger    *slog.Logger
	observers []Observer
}

// FallbackOption configures a FallbackRetrier.
type FallbackOption func(*FallbackRetrier)

// WithFallbackLogger sets the logger.
func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(r *FallbackRetrier) {
		r.logger = logger
	}
}

// WithFallbackObservers registers observers notified of every retry outcome.
func WithFallbackObservers(observers ...Observer) FallbackOption {
	return func(r *FallbackRetrier) {
		r.observers = append(r.observers, observers...)
	}
}

// NewFallbackRetrier creates a FallbackRetrier. prober should be built on
// a client from transport.NewFallbackClient.
func NewFallbackRetrier(prober *Prober, opts ...FallbackOption) *FallbackRetrier {
	r := &FallbackRetrier{prober: prober}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Retry probes each URL exactly once, sequentially and in the given order.
// The returned slice is aligned with failed. Outcomes carry
// model.AttemptFallback. URLs not reached before ctx ends get Canceled
// outcomes.
func (r *FallbackRetrier) Retry(ctx context.Context, failed []string) []model.ProbeOutcome {
	if len(failed) == 0 {
		return nil
	}
	r.logger.Info("retrying failed URLs sequentially", "count", len(failed))

	outcomes := make([]model.ProbeOutcome, 0, len(failed))
	for _, rawURL := range failed {
		outcome := r.prober.Probe(ctx, rawURL, model.AttemptFallback)
		if outcome.Failed() && outcome.Err.Kind != model.KindCanceled {
			r.logger.Warn("URL could not be checked, re-run on it or check it manually",
				"url", rawURL,
				"kind", outcome.Err.Kind.String(),
				"error", outcome.Err,
			)
		}
		outcomes = append(outcomes, outcome)
		notify(r.observers, outcome)
	}
	return outcomes
}
