package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

type ListQueueInput struct {
	Status string `query:"status" required:"false" enum:"pending,approved,rejected" doc:"Filter by review status"`
}

type ListQueueOutput struct {
	Body []QueueEntryResponse
}

func registerQueue(api huma.API, svc *app.Service) {
	huma.Register(api, op(http.MethodGet, "list-moderation-queue", "/api/v1/moderation-queue", "List the moderation queue", "Moderation"),
		func(ctx context.Context, input *ListQueueInput) (*ListQueueOutput, error) {
			entries, err := svc.ListQueue(ctx, actorFrom(ctx), reviewStatusFilter(input.Status))
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			out := make([]QueueEntryResponse, len(entries))
			for i, e := range entries {
				out[i] = toQueueEntryResponse(e)
			}
			return &ListQueueOutput{Body: out}, nil
		})

	for _, d := range []domain.Decision{domain.DecisionApprove, domain.DecisionReject} {
		huma.Register(api, post(string(d)+"-queue-entry", "/api/v1/moderation-queue/{id}/"+string(d), "Review a queued item ("+string(d)+")", "Moderation", http.StatusOK),
			func(ctx context.Context, input *ReviewInput) (*SuccessOutput, error) {
				if _, err := svc.ReviewQueueEntry(ctx, actorFrom(ctx), input.ID, d, input.notes()); err != nil {
					return nil, toHumaError(ctx, err)
				}
				return &SuccessOutput{Body: SuccessBody{Success: true}}, nil
			})
	}
}
