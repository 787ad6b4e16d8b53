package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Submit Proposal ---

// ProposedFields is the flat field map of a proposal. Which fields apply
// depends on item_type; sending a field of the other type is rejected.
type ProposedFields struct {
	Name        *string     `json:"name,omitempty" minLength:"1" maxLength:"255"`
	Bio         *string     `json:"bio,omitempty" maxLength:"2000"`
	PhotoURL    *string     `json:"photo_url,omitempty"`
	IsFreelance *bool       `json:"is_freelance,omitempty"`
	VenueIDs    OptionalIDs `json:"venue_ids,omitempty"`
	VenueID     OptionalID  `json:"venue_id,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Address     *string     `json:"address,omitempty" maxLength:"500"`
	City        *string     `json:"city,omitempty" maxLength:"100"`
	Description *string     `json:"description,omitempty" maxLength:"2000"`
	PriceLevel  *int        `json:"price_level,omitempty" minimum:"0" maximum:"4"`
}

func (f ProposedFields) forWorker() (domain.ProposedChanges, error) {
	if field := f.firstVenueField(); field != "" {
		return domain.ProposedChanges{}, notApplicable(field, domain.ItemWorker)
	}
	c, err := WorkerPatch{
		Name:        f.Name,
		Bio:         f.Bio,
		PhotoURL:    f.PhotoURL,
		IsFreelance: f.IsFreelance,
		VenueIDs:    f.VenueIDs,
		VenueID:     f.VenueID,
	}.changes()
	if err != nil {
		return domain.ProposedChanges{}, err
	}
	return domain.ProposedChanges{Worker: &c}, nil
}

func (f ProposedFields) forVenue() (domain.ProposedChanges, error) {
	if field := f.firstWorkerField(); field != "" {
		return domain.ProposedChanges{}, notApplicable(field, domain.ItemVenue)
	}
	c := VenuePatch{
		Name:        f.Name,
		Category:    f.Category,
		Address:     f.Address,
		City:        f.City,
		Description: f.Description,
		PriceLevel:  f.PriceLevel,
		PhotoURL:    f.PhotoURL,
	}.changes()
	return domain.ProposedChanges{Venue: &c}, nil
}

func (f ProposedFields) firstVenueField() string {
	switch {
	case f.Category != nil:
		return "category"
	case f.Address != nil:
		return "address"
	case f.City != nil:
		return "city"
	case f.Description != nil:
		return "description"
	case f.PriceLevel != nil:
		return "price_level"
	}
	return ""
}

func (f ProposedFields) firstWorkerField() string {
	switch {
	case f.Bio != nil:
		return "bio"
	case f.IsFreelance != nil:
		return "is_freelance"
	case f.VenueIDs.Set:
		return "venue_ids"
	case f.VenueID.Set:
		return "venue_id"
	}
	return ""
}

func notApplicable(field string, itemType domain.ItemType) error {
	return &domain.ValidationError{
		Field:  "proposed_changes." + field,
		Reason: fmt.Sprintf("not a %s field", itemType),
	}
}

type SubmitProposalInput struct {
	Body struct {
		ItemType        string         `json:"item_type" enum:"worker,venue" doc:"Kind of item to edit"`
		ItemID          string         `json:"item_id" minLength:"1" doc:"ID of the item to edit"`
		ProposedChanges ProposedFields `json:"proposed_changes" doc:"Fields to change"`
		CurrentValues   map[string]any `json:"current_values,omitempty" doc:"Client view of the item; the server snapshot is used when omitted"`
	}
}

type SubmitProposalBody struct {
	Proposal     ProposalResponse `json:"proposal"`
	AutoApproved bool             `json:"auto_approved" doc:"True when the change was applied immediately"`
}

type SubmitProposalOutput struct {
	Body SubmitProposalBody
}

// --- List Proposals ---

type ListProposalsInput struct {
	Status   string `query:"status" required:"false" enum:"pending,approved,rejected" doc:"Filter by review status"`
	Kind     string `query:"kind" required:"false" enum:"create,edit" doc:"Filter by kind"`
	ItemType string `query:"item_type" required:"false" enum:"worker,venue" doc:"Filter by item type"`
	ItemID   string `query:"item_id" required:"false" doc:"Filter by item"`
	PageQuery
}

type ListProposalsOutput struct {
	Body []ProposalResponse
}

// --- Review ---

type ReviewInput struct {
	ID   string `path:"id" doc:"Proposal or queue entry ID"`
	Body *ReviewBody
}

// notes returns the moderator notes, empty when no body was sent.
func (in *ReviewInput) notes() string {
	if in.Body == nil {
		return ""
	}
	return in.Body.Notes
}

type SuccessOutput struct {
	Body SuccessBody
}

func registerProposals(api huma.API, svc *app.Service) {
	huma.Register(api, post("submit-proposal", "/api/v1/proposals", "Propose an edit", "Proposals", http.StatusCreated),
		func(ctx context.Context, input *SubmitProposalInput) (*SubmitProposalOutput, error) {
			cmd := app.SubmitProposalCommand{
				ItemType: domain.ItemType(input.Body.ItemType),
				ItemID:   input.Body.ItemID,
			}
			var err error
			if cmd.ItemType == domain.ItemWorker {
				cmd.Changes, err = input.Body.ProposedChanges.forWorker()
			} else {
				cmd.Changes, err = input.Body.ProposedChanges.forVenue()
			}
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			if input.Body.CurrentValues != nil {
				if cmd.CurrentValues, err = json.Marshal(input.Body.CurrentValues); err != nil {
					return nil, toHumaError(ctx, &domain.ValidationError{Field: "current_values", Reason: err.Error()})
				}
			}

			p, auto, err := svc.SubmitProposal(ctx, actorFrom(ctx), cmd)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &SubmitProposalOutput{Body: SubmitProposalBody{
				Proposal:     toProposalResponse(p),
				AutoApproved: auto,
			}}, nil
		})

	huma.Register(api, op(http.MethodGet, "list-proposals", "/api/v1/proposals", "List proposals", "Proposals"),
		func(ctx context.Context, input *ListProposalsInput) (*ListProposalsOutput, error) {
			filter := domain.ProposalFilter{
				Status: reviewStatusFilter(input.Status),
				ItemID: input.ItemID,
				Limit:  input.Limit,
				Offset: input.Offset,
			}
			if input.Kind != "" {
				filter.Kind = ptr(domain.ProposalKind(input.Kind))
			}
			if input.ItemType != "" {
				filter.ItemType = ptr(domain.ItemType(input.ItemType))
			}
			ps, err := svc.ListProposals(ctx, actorFrom(ctx), filter)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			out := make([]ProposalResponse, len(ps))
			for i, p := range ps {
				out[i] = toProposalResponse(p)
			}
			return &ListProposalsOutput{Body: out}, nil
		})

	huma.Register(api, post("approve-proposal", "/api/v1/proposals/{id}/approve", "Approve a proposal and apply it", "Proposals", http.StatusOK),
		func(ctx context.Context, input *ReviewInput) (*SuccessOutput, error) {
			if _, err := svc.ApproveProposal(ctx, actorFrom(ctx), input.ID, input.notes()); err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &SuccessOutput{Body: SuccessBody{Success: true}}, nil
		})

	huma.Register(api, post("reject-proposal", "/api/v1/proposals/{id}/reject", "Reject a proposal", "Proposals", http.StatusOK),
		func(ctx context.Context, input *ReviewInput) (*SuccessOutput, error) {
			if _, err := svc.RejectProposal(ctx, actorFrom(ctx), input.ID, input.notes()); err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &SuccessOutput{Body: SuccessBody{Success: true}}, nil
		})
}
