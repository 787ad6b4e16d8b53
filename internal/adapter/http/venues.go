package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Create Venue ---

type CreateVenueInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Venue name"`
		Category    string `json:"category" minLength:"1" doc:"One of Nightclub, Bar, Lounge, Restaurant, Spa, Club"`
		Address     string `json:"address,omitempty" maxLength:"500"`
		City        string `json:"city,omitempty" maxLength:"100"`
		Description string `json:"description,omitempty" maxLength:"2000"`
		PriceLevel  int    `json:"price_level,omitempty" minimum:"0" maximum:"4" doc:"Price level from 0 to 4"`
		PhotoURL    string `json:"photo_url,omitempty" format:"uri"`
	}
}

type VenueOutput struct {
	Body VenueResponse
}

// --- Get / List Venues ---

type VenueIDInput struct {
	ID string `path:"id" doc:"Venue ID"`
}

type ListVenuesInput struct {
	Status   string `query:"status" required:"false" enum:"pending,approved,rejected,removed" doc:"Filter by status"`
	Category string `query:"category" required:"false" doc:"Filter by category"`
	PageQuery
}

type ListVenuesOutput struct {
	Body []VenueResponse
}

// --- Update Venue ---

// VenuePatch is a partial venue update. Omitted fields are left alone.
type VenuePatch struct {
	Name        *string `json:"name,omitempty" minLength:"1" maxLength:"255"`
	Category    *string `json:"category,omitempty"`
	Address     *string `json:"address,omitempty" maxLength:"500"`
	City        *string `json:"city,omitempty" maxLength:"100"`
	Description *string `json:"description,omitempty" maxLength:"2000"`
	PriceLevel  *int    `json:"price_level,omitempty" minimum:"0" maximum:"4"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

func (p VenuePatch) changes() domain.VenueChanges {
	c := domain.VenueChanges{
		Name:        p.Name,
		Address:     p.Address,
		City:        p.City,
		Description: p.Description,
		PriceLevel:  p.PriceLevel,
		PhotoURL:    p.PhotoURL,
	}
	if p.Category != nil {
		c.Category = ptr(domain.Category(*p.Category))
	}
	return c
}

type UpdateVenueInput struct {
	ID   string `path:"id" doc:"Venue ID"`
	Body VenuePatch
}

// --- Transition ---

type VenueEventInput struct {
	ID   string `path:"id" doc:"Venue ID"`
	Body EventBody
}

// --- Owners ---

type GrantOwnerBody struct {
	CanEditInfo    *bool `json:"can_edit_info,omitempty" doc:"Defaults to true"`
	CanEditPricing *bool `json:"can_edit_pricing,omitempty" doc:"Defaults to true"`
	CanEditPhotos  *bool `json:"can_edit_photos,omitempty" doc:"Defaults to true"`
}

type GrantOwnerInput struct {
	ID     string `path:"id" doc:"Venue ID"`
	UserID string `path:"userId" doc:"User to grant ownership to"`
	Body   *GrantOwnerBody
}

// permissions starts from full permissions; an omitted body grants all of them.
func (in *GrantOwnerInput) permissions() domain.VenuePermissions {
	perms := domain.FullVenuePermissions
	if in.Body == nil {
		return perms
	}
	if in.Body.CanEditInfo != nil {
		perms.CanEditInfo = *in.Body.CanEditInfo
	}
	if in.Body.CanEditPricing != nil {
		perms.CanEditPricing = *in.Body.CanEditPricing
	}
	if in.Body.CanEditPhotos != nil {
		perms.CanEditPhotos = *in.Body.CanEditPhotos
	}
	return perms
}

func registerVenues(api huma.API, svc *app.Service) {
	huma.Register(api, post("create-venue", "/api/v1/venues", "Create a venue", "Venues", http.StatusCreated),
		func(ctx context.Context, input *CreateVenueInput) (*VenueOutput, error) {
			v, err := svc.CreateVenue(ctx, actorFrom(ctx), app.CreateVenueCommand{
				Name:        input.Body.Name,
				Category:    domain.Category(input.Body.Category),
				Address:     input.Body.Address,
				City:        input.Body.City,
				Description: input.Body.Description,
				PriceLevel:  input.Body.PriceLevel,
				PhotoURL:    input.Body.PhotoURL,
			})
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &VenueOutput{Body: toVenueResponse(v)}, nil
		})

	huma.Register(api, op(http.MethodGet, "list-venues", "/api/v1/venues", "List venues", "Venues"),
		func(ctx context.Context, input *ListVenuesInput) (*ListVenuesOutput, error) {
			filter := domain.VenueFilter{
				Status: statusFilter(input.Status),
				Limit:  input.Limit,
				Offset: input.Offset,
			}
			if input.Category != "" {
				filter.Category = ptr(domain.Category(input.Category))
			}
			vs, err := svc.ListVenues(ctx, actorFrom(ctx), filter)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			out := make([]VenueResponse, len(vs))
			for i, v := range vs {
				out[i] = toVenueResponse(v)
			}
			return &ListVenuesOutput{Body: out}, nil
		})

	huma.Register(api, op(http.MethodGet, "get-venue", "/api/v1/venues/{id}", "Get a venue", "Venues"),
		func(ctx context.Context, input *VenueIDInput) (*VenueOutput, error) {
			v, err := svc.GetVenue(ctx, actorFrom(ctx), input.ID)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &VenueOutput{Body: toVenueResponse(v)}, nil
		})

	huma.Register(api, op(http.MethodGet, "list-venue-workers", "/api/v1/venues/{id}/workers", "Workers currently at a venue", "Venues"),
		func(ctx context.Context, input *VenueIDInput) (*ListWorkersOutput, error) {
			ws, err := svc.VenueWorkers(ctx, actorFrom(ctx), input.ID)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &ListWorkersOutput{Body: toWorkerResponses(ws)}, nil
		})

	huma.Register(api, op(http.MethodPatch, "update-venue", "/api/v1/venues/{id}", "Edit a venue directly", "Venues"),
		func(ctx context.Context, input *UpdateVenueInput) (*VenueOutput, error) {
			v, err := svc.UpdateVenue(ctx, actorFrom(ctx), input.ID, input.Body.changes())
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &VenueOutput{Body: toVenueResponse(v)}, nil
		})

	huma.Register(api, post("transition-venue", "/api/v1/venues/{id}/events", "Fire a lifecycle event on a venue", "Venues", http.StatusOK),
		func(ctx context.Context, input *VenueEventInput) (*VenueOutput, error) {
			v, err := svc.TransitionVenue(ctx, actorFrom(ctx), input.ID, domain.Event(input.Body.Event))
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &VenueOutput{Body: toVenueResponse(v)}, nil
		})

	grant := op(http.MethodPut, "grant-venue-owner", "/api/v1/venues/{id}/owners/{userId}", "Grant venue ownership", "Venues")
	grant.DefaultStatus = http.StatusNoContent
	huma.Register(api, grant,
		func(ctx context.Context, input *GrantOwnerInput) (*struct{}, error) {
			if err := svc.GrantVenueOwner(ctx, actorFrom(ctx), input.ID, input.UserID, input.permissions()); err != nil {
				return nil, toHumaError(ctx, err)
			}
			return nil, nil
		})
}
