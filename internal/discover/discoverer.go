package discover

import (
	"context"
	"log/slog"

	"github.com/webrecon/webrecon/internal/model"
)

// Discoverer defines the interface that all discovery passes implement.
// Passes are executed in sequence and each receives the accumulated
// report to append findings to.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows passes to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Discoverer interface {
	// Do executes the discovery pass. It receives the context for
	// cancellation and the report to modify. Returns an error only for
	// critical failures; per-probe misses are not errors.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name returns the pass name for logging purposes.
	Name() string
}

// Runner orchestrates the execution of discovery passes.
// It maintains an ordered list and executes them one at a time; the
// report is not safe for concurrent mutation, so passes never overlap.
type Runner struct {
	passes []Discoverer
	logger *slog.Logger

	// continueOnError determines whether to continue executing passes
	// after one fails. If false, the runner stops on first error.
	continueOnError bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithContinueOnError configures the runner to continue execution even
// when a pass fails. The failure is recorded as a report warning and
// subsequent passes still execute.
func WithContinueOnError(continueOnError bool) RunnerOption {
	return func(r *Runner) {
		r.continueOnError = continueOnError
	}
}

// NewRunner creates a Runner with the given options.
// Passes are added with Add after creation.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Add appends discovery passes in execution order.
func (r *Runner) Add(passes ...Discoverer) {
	r.passes = append(r.passes, passes...)
}

// Execute runs all passes in sequence, checking for cancellation
// between passes. Returns the first error when continueOnError is
// false, nil otherwise.
func (r *Runner) Execute(ctx context.Context, report *model.CrawlReport) error {
	for _, pass := range r.passes {
		select {
		case <-ctx.Done():
			r.logger.Warn("discovery cancelled",
				"pass", pass.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		r.logger.Info("running discovery pass", "pass", pass.Name())

		if err := pass.Do(ctx, report); err != nil {
			r.logger.Error("discovery pass failed",
				"pass", pass.Name(),
				"error", err,
			)
			report.AddWarning(pass.Name() + ": " + err.Error())
			if !r.continueOnError {
				return err
			}
			continue
		}

		r.logger.Debug("discovery pass completed", "pass", pass.Name())
	}
	return nil
}
