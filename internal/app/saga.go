package app

import (
	"context"
	"log/slog"
)

// compensation undoes one completed step of a multi-step write.
type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// compensations is the undo log of a saga. Each forward step registers its
// undo right after it succeeds; rollback runs them newest first.
type compensations struct {
	log   *slog.Logger
	steps []compensation
}

func newCompensations(logger *slog.Logger) *compensations {
	return &compensations{log: logger}
}

func (c *compensations) add(step string, undo func(ctx context.Context) error) {
	c.steps = append(c.steps, compensation{step: step, undo: undo})
}

// rollback runs every registered undo in reverse order. Failures are logged
// and do not stop the remaining undos; the caller still returns cause.
func (c *compensations) rollback(ctx context.Context, cause error) {
	// Cleanup must finish even if the caller's context is already done.
	ctx = context.WithoutCancel(ctx)

	c.log.WarnContext(ctx, "rolling back", "steps", len(c.steps), "cause", cause)
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(ctx); err != nil {
			c.log.ErrorContext(ctx, "compensation failed",
				"step", step.step,
				"error", err,
				"cause", cause,
			)
		}
	}
	c.steps = nil
}
