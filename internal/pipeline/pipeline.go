package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/linkprobe/internal/model"
)

// Step is one stage of a link check. Steps run in sequence and share the
// run report.
type Step interface {
	// Do executes the step. Per-URL failures are recorded in the report;
	// an error means the step itself could not do its job.
	Do(ctx context.Context, report *model.RunReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// FinalStep is implemented by steps that must run even after the context
// ends. Classification and reconciliation are final so that a canceled run
// still accounts for every input URL.
//
// Design decision: We use an optional interface rather than a flag passed
// to AddStep because finality belongs to the step. A step that only reads
// the report in memory can always finish, while a step that sends requests
// cannot.
type FinalStep interface {
	Step
	Final() bool
}

func isFinal(step Step) bool {
	f, ok := step.(FinalStep)
	return ok && f.Final()
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order.
//
// Design decision: We check ctx between steps rather than aborting a step
// in flight. Probing steps watch ctx themselves and return partial
// outcomes, so the next final step always sees a consistent report.
//
// Once ctx ends, report.Canceled is set and only final steps still run.
// Execute then returns ctx.Err() so callers can tell the run was cut short,
// while the report is still complete enough to save and print.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	var firstErr error

	for _, step := range p.steps {
		if ctx.Err() != nil && !report.Canceled {
			p.logger.Warn("run canceled, finishing bookkeeping",
				"run", report.ID,
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.Canceled = true
		}
		if report.Canceled && !isFinal(step) {
			p.logger.Debug("skipping step", "step", step.Name())
			continue
		}

		p.logger.Info("executing step", "step", step.Name(), "run", report.ID)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"run", report.ID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}
		p.logger.Debug("step completed", "step", step.Name(), "run", report.ID)
	}

	if firstErr != nil {
		return firstErr
	}
	if report.Canceled {
		return ctx.Err()
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
