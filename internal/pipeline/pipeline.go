package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step, reading and updating run.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
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

// Execute runs all steps in sequence and returns the first error. The
// cancellation of ctx is checked before each step; the steps themselves
// stop on cancellation too.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return p.fail(run, step, err)
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"category", run.Category,
		)

		start := time.Now()
		err := step.Do(ctx, run)
		elapsed := time.Since(start)
		run.StepTimings = append(run.StepTimings, model.StepTiming{Step: step.Name(), Duration: elapsed})

		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"elapsed", elapsed,
				"error", err,
			)
			return p.fail(run, step, err)
		}

		p.logger.Info("step completed",
			"step", step.Name(),
			"elapsed", elapsed,
		)
	}

	return nil
}

func (p *Pipeline) fail(run *model.Run, step Step, err error) error {
	err = fmt.Errorf("%s: %w", step.Name(), err)
	run.Error = err
	run.ErrorMessage = err.Error()
	return err
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
