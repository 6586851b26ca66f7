package model

import (
	"time"

	"github.com/google/uuid"
)

// RunSettings is a snapshot of the engine settings used for a run.
// It is stored with the run so history entries can be interpreted later.
type RunSettings struct {
	Concurrency    int           `json:"concurrency"`
	MaxJitterDelay time.Duration `json:"max_jitter_delay"`
	Timeout        time.Duration `json:"timeout"`
	Method         string        `json:"method"`
	RateLimit      float64       `json:"rate_limit,omitempty"`
	Profiles       int           `json:"profiles"`
}

// RunReport is the accumulated state of one run of the engine.
// Pipeline steps fill it in order: Outcomes, Retried, Result, Reconciliation.
//
// Design decision: One struct threads through every step instead of each
// step returning its own value, mirroring how the steps depend on each
// other's output and making the whole run storable as a single JSON document.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when reconciliation completed.
	FinishedAt time.Time `json:"finished_at"`

	// Settings records the configuration used.
	Settings RunSettings `json:"settings"`

	// Inputs is the deduplicated input URL list, in input order.
	Inputs []string `json:"inputs"`

	// Duplicates counts input entries dropped by deduplication.
	Duplicates int `json:"duplicates,omitempty"`

	// Outcomes holds the latest outcome for each input URL, index-aligned
	// with Inputs.
	Outcomes []ProbeOutcome `json:"outcomes"`

	// Retried lists URLs that went through the fallback phase.
	Retried []string `json:"retried,omitempty"`

	// Result is the valid/dead partition.
	Result *ClassificationResult `json:"result"`

	// Reconciliation is the completeness check.
	Reconciliation *ReconciliationReport `json:"reconciliation"`

	// Canceled is true if the run context ended before the run finished.
	Canceled bool `json:"canceled,omitempty"`
}

// NewRunReport creates a report for the given inputs with a fresh ID.
func NewRunReport(inputs []string) *RunReport {
	return &RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Inputs:    inputs,
		Outcomes:  make([]ProbeOutcome, 0, len(inputs)),
	}
}

// FailedURLs returns, in input order, the URLs whose current outcome
// carries no status code.
func (r *RunReport) FailedURLs() []string {
	failed := make([]string, 0)
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o.URL)
		}
	}
	return failed
}

// ReplaceOutcomes overwrites the current outcome of each URL in updates.
// URLs not present in the report are ignored.
func (r *RunReport) ReplaceOutcomes(updates []ProbeOutcome) {
	index := make(map[string]int, len(r.Outcomes))
	for i, o := range r.Outcomes {
		index[o.URL] = i
	}
	for _, u := range updates {
		if i, ok := index[u.URL]; ok {
			r.Outcomes[i] = u
		}
	}
}

// Elapsed returns the run duration, or the time since start if unfinished.
func (r *RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary holds the headline counts of a run.
type Summary struct {
	Total      int `json:"total"`
	Valid      int `json:"valid"`
	Dead       int `json:"dead"`
	Unresolved int `json:"unresolved"`
	Retried    int `json:"retried"`
}

// Summary computes the headline counts.
func (r *RunReport) Summary() Summary {
	s := Summary{Total: len(r.Inputs), Retried: len(r.Retried)}
	if r.Result != nil {
		s.Valid = len(r.Result.Valid)
		s.Dead = len(r.Result.Dead)
	}
	if r.Reconciliation != nil {
		s.Unresolved = len(r.Reconciliation.Unresolved)
	}
	return s
}
