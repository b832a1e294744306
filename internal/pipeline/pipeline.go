package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitecheck/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Each step runs one check and appends its result to the report.
type Step interface {
	// Do executes the check against the report's root.
	// Content diagnostics are recorded in the report and return nil.
	// An error means the check could not run at all.
	Do(ctx context.Context, report *model.Report) error

	// Name returns the check name, one of the model.Check* constants.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
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

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The failure is still recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
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

// Execute runs all steps in sequence.
//
// When a step fails and has not recorded its own result, a result carrying
// the error text as its fatal message is added on its behalf. Execute returns
// the first error unless continue-on-error is set, and always returns the
// context error on cancellation.
func (p *Pipeline) Execute(ctx context.Context, report *model.Report) error {
	p.logger.Debug("executing pipeline",
		"root", report.Root,
		"steps", p.StepCount(),
	)
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"root", report.Root,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"root", report.Root,
				"error", err,
			)
			if report.Result(step.Name()) == nil {
				result := model.NewCheckResult(step.Name())
				result.Fatal = err.Error()
				report.AddResult(result)
			}
			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"root", report.Root,
		)
		report.PerformedChecks = append(report.PerformedChecks, step.Name())
	}
	return firstErr
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
