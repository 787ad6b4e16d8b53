package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Create Worker ---

type CreateWorkerInput struct {
	Body struct {
		Name        string      `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Bio         string      `json:"bio,omitempty" maxLength:"2000" doc:"Short biography"`
		PhotoURL    string      `json:"photo_url,omitempty" format:"uri" doc:"Profile photo URL"`
		IsFreelance bool        `json:"is_freelance,omitempty" doc:"Freelance workers may only be listed at Nightclub venues"`
		OwnerID     string      `json:"owner_id,omitempty" doc:"Owner user ID; privileged callers only, defaults to the caller"`
		VenueIDs    OptionalIDs `json:"venue_ids,omitempty" doc:"Initial current venues"`
		VenueID     OptionalID  `json:"venue_id,omitempty" doc:"Single initial venue; alternative to venue_ids"`
		Notes       string      `json:"notes,omitempty" maxLength:"500" doc:"Notes stored on the initial associations"`
	}
}

type WorkerOutput struct {
	Body WorkerResponse
}

// --- Get / List Workers ---

type WorkerIDInput struct {
	ID string `path:"id" doc:"Worker ID"`
}

type ListWorkersInput struct {
	Status  string `query:"status" required:"false" enum:"pending,approved,rejected,removed" doc:"Filter by status"`
	OwnerID string `query:"owner_id" required:"false" doc:"Filter by owner"`
	PageQuery
}

type ListWorkersOutput struct {
	Body []WorkerResponse
}

// --- Update Worker ---

// WorkerPatch is a partial worker update. Omitted fields are left alone;
// venue_ids (or the single venue_id) replaces the full set of current venues.
type WorkerPatch struct {
	Name        *string     `json:"name,omitempty" minLength:"1" maxLength:"255"`
	Bio         *string     `json:"bio,omitempty" maxLength:"2000"`
	PhotoURL    *string     `json:"photo_url,omitempty"`
	IsFreelance *bool       `json:"is_freelance,omitempty"`
	VenueIDs    OptionalIDs `json:"venue_ids,omitempty"`
	VenueID     OptionalID  `json:"venue_id,omitempty"`
}

func (p WorkerPatch) changes() (domain.WorkerChanges, error) {
	c := domain.WorkerChanges{
		Name:        p.Name,
		Bio:         p.Bio,
		PhotoURL:    p.PhotoURL,
		IsFreelance: p.IsFreelance,
	}
	ids, ok, conflict := assignment(p.VenueIDs, p.VenueID)
	if conflict {
		return c, &domain.ValidationError{Field: "venue_ids", Reason: "send either venue_ids or venue_id, not both"}
	}
	if ok {
		c.Venues = &domain.VenueAssignment{VenueIDs: ids}
	}
	return c, nil
}

type UpdateWorkerInput struct {
	ID   string `path:"id" doc:"Worker ID"`
	Body WorkerPatch
}

// --- Associations ---

type AssociationsOutput struct {
	Body []AssociationResponse
}

// --- Transition ---

type WorkerEventInput struct {
	ID   string `path:"id" doc:"Worker ID"`
	Body EventBody
}

func registerWorkers(api huma.API, svc *app.Service) {
	huma.Register(api, post("create-worker", "/api/v1/workers", "Create a worker", "Workers", http.StatusCreated),
		func(ctx context.Context, input *CreateWorkerInput) (*WorkerOutput, error) {
			venueIDs, _, conflict := assignment(input.Body.VenueIDs, input.Body.VenueID)
			if conflict {
				return nil, toHumaError(ctx, &domain.ValidationError{Field: "venue_ids", Reason: "send either venue_ids or venue_id, not both"})
			}
			w, err := svc.CreateWorker(ctx, actorFrom(ctx), app.CreateWorkerCommand{
				Name:        input.Body.Name,
				Bio:         input.Body.Bio,
				PhotoURL:    input.Body.PhotoURL,
				IsFreelance: input.Body.IsFreelance,
				OwnerID:     input.Body.OwnerID,
				VenueIDs:    venueIDs,
				Notes:       input.Body.Notes,
			})
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &WorkerOutput{Body: toWorkerResponse(w)}, nil
		})

	huma.Register(api, op(http.MethodGet, "list-workers", "/api/v1/workers", "List workers", "Workers"),
		func(ctx context.Context, input *ListWorkersInput) (*ListWorkersOutput, error) {
			ws, err := svc.ListWorkers(ctx, actorFrom(ctx), domain.WorkerFilter{
				Status:  statusFilter(input.Status),
				OwnerID: input.OwnerID,
				Limit:   input.Limit,
				Offset:  input.Offset,
			})
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &ListWorkersOutput{Body: toWorkerResponses(ws)}, nil
		})

	huma.Register(api, op(http.MethodGet, "get-worker", "/api/v1/workers/{id}", "Get a worker", "Workers"),
		func(ctx context.Context, input *WorkerIDInput) (*WorkerOutput, error) {
			w, err := svc.GetWorker(ctx, actorFrom(ctx), input.ID)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &WorkerOutput{Body: toWorkerResponse(w)}, nil
		})

	huma.Register(api, op(http.MethodPatch, "update-worker", "/api/v1/workers/{id}", "Edit a worker directly", "Workers"),
		func(ctx context.Context, input *UpdateWorkerInput) (*WorkerOutput, error) {
			changes, err := input.Body.changes()
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			w, err := svc.UpdateWorker(ctx, actorFrom(ctx), input.ID, changes)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &WorkerOutput{Body: toWorkerResponse(w)}, nil
		})

	huma.Register(api, op(http.MethodGet, "list-worker-associations", "/api/v1/workers/{id}/associations", "Employment history of a worker", "Workers"),
		func(ctx context.Context, input *WorkerIDInput) (*AssociationsOutput, error) {
			assocs, err := svc.WorkerAssociations(ctx, actorFrom(ctx), input.ID)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			out := make([]AssociationResponse, len(assocs))
			for i, a := range assocs {
				out[i] = toAssociationResponse(a)
			}
			return &AssociationsOutput{Body: out}, nil
		})

	huma.Register(api, post("transition-worker", "/api/v1/workers/{id}/events", "Fire a lifecycle event on a worker", "Workers", http.StatusOK),
		func(ctx context.Context, input *WorkerEventInput) (*WorkerOutput, error) {
			w, err := svc.TransitionWorker(ctx, actorFrom(ctx), input.ID, domain.Event(input.Body.Event))
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &WorkerOutput{Body: toWorkerResponse(w)}, nil
		})
}
