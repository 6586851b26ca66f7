package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nao1215/linkprobe/internal/classify"
	applog "github.com/nao1215/linkprobe/internal/log"
	"github.com/nao1215/linkprobe/internal/model"
	"github.com/nao1215/linkprobe/internal/probe"
)

// FetchStep probes every input concurrently.
type FetchStep struct {
	fetcher *probe.BatchFetcher
}

// NewFetchStep creates the concurrent batch step.
func NewFetchStep(fetcher *probe.BatchFetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fills report.Outcomes, one per input.
func (s *FetchStep) Do(ctx context.Context, report *model.RunReport) error {
	report.Outcomes = s.fetcher.FetchAll(ctx, report.Inputs)
	return nil
}

// FallbackStep re-probes, one at a time, every URL whose batch attempt
// produced no status code.
type FallbackStep struct {
	retrier *probe.FallbackRetrier
}

// NewFallbackStep creates the sequential retry step.
func NewFallbackStep(retrier *probe.FallbackRetrier) *FallbackStep {
	return &FallbackStep{retrier: retrier}
}

// Name returns the step name.
func (s *FallbackStep) Name() string {
	return "fallback"
}

// Do replaces the outcome of each failed URL with its retry outcome.
func (s *FallbackStep) Do(ctx context.Context, report *model.RunReport) error {
	failed := report.FailedURLs()
	if len(failed) == 0 {
		return nil
	}
	report.Retried = failed
	report.ReplaceOutcomes(s.retrier.Retry(ctx, failed))
	return nil
}

// ClassifyStep partitions the outcomes with a status code into valid and
// dead links.
type ClassifyStep struct {
	logger *slog.Logger
}

// NewClassifyStep creates the classification step.
func NewClassifyStep(logger *slog.Logger) *ClassifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyStep{logger: logger}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Final reports that classification runs even on a canceled run.
func (s *ClassifyStep) Final() bool {
	return true
}

// Do sets report.Result.
func (s *ClassifyStep) Do(_ context.Context, report *model.RunReport) error {
	result, _, err := classify.Partition(report.Outcomes)
	if err != nil {
		return err
	}
	report.Result = result

	for _, o := range report.Outcomes {
		if o.HasStatus() && classify.Classify(o.StatusCode) == model.VerdictDead {
			s.logger.Info("dead link", "url", o.URL, "status", o.StatusCode)
		}
	}
	return nil
}

// ReconcileStep checks that every input URL was classified.
type ReconcileStep struct {
	logger *slog.Logger
}

// NewReconcileStep creates the reconciliation step.
func NewReconcileStep(logger *slog.Logger) *ReconcileStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileStep{logger: logger}
}

// Name returns the step name.
func (s *ReconcileStep) Name() string {
	return "reconcile"
}

// Final reports that reconciliation runs even on a canceled run.
func (s *ReconcileStep) Final() bool {
	return true
}

// Do sets report.Reconciliation and report.FinishedAt. Unresolved URLs are
// logged as a JSON array that can be fed straight back into a new run, so
// the list bypasses URL redaction.
func (s *ReconcileStep) Do(_ context.Context, report *model.RunReport) error {
	report.Reconciliation = classify.Verify(report.Inputs, report.Result)
	report.FinishedAt = time.Now()

	if report.Reconciliation.AllResolved {
		return nil
	}

	list, err := json.Marshal(report.Reconciliation.Unresolved)
	if err != nil {
		return err
	}
	s.logger.Warn("some URLs could not be checked, re-run on exactly these or check them manually",
		"count", len(report.Reconciliation.Unresolved),
		"unresolved", applog.Verbatim(list),
	)
	return nil
}
