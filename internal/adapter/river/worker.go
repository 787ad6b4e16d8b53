package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// NotificationWorker delivers moderation notifications. Delivery is a
// structured log line until a mail or push channel exists.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	slog.InfoContext(ctx, "delivering notification",
		"event", job.Args.Event,
		"item_type", job.Args.ItemType,
		"item_id", job.Args.ItemID,
		"proposal_id", job.Args.ProposalID,
		"recipient_id", job.Args.RecipientID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// PointsWorker hands points events to contributor accounting.
type PointsWorker struct {
	river.WorkerDefaults[PointsJobArgs]
}

// Work processes a single points job.
func (w *PointsWorker) Work(ctx context.Context, job *river.Job[PointsJobArgs]) error {
	slog.InfoContext(ctx, "awarding points",
		"action", job.Args.Action,
		"worker_id", job.Args.WorkerID,
		"actor_id", job.Args.ActorID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
