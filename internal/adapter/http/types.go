package http

import (
	"encoding/json"
	"time"

	"github.com/neomorfeo/venuedir/internal/domain"
)

const timeLayout = time.RFC3339

// WorkerResponse is the public representation of a worker.
type WorkerResponse struct {
	ID          string `json:"id" doc:"Worker ID"`
	Name        string `json:"name" doc:"Display name"`
	Bio         string `json:"bio" doc:"Short biography"`
	PhotoURL    string `json:"photo_url" doc:"Profile photo URL"`
	IsFreelance bool   `json:"is_freelance" doc:"Freelance workers may only hold Nightclub venues"`
	Status      string `json:"status" doc:"Lifecycle state" enum:"pending,approved,rejected,removed"`
	OwnerID     string `json:"owner_id" doc:"User who owns the profile"`
	CreatedBy   string `json:"created_by" doc:"User who created the profile"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (RFC 3339)"`
}

func toWorkerResponse(w domain.Worker) WorkerResponse {
	return WorkerResponse{
		ID:          w.ID,
		Name:        w.Name,
		Bio:         w.Bio,
		PhotoURL:    w.PhotoURL,
		IsFreelance: w.IsFreelance,
		Status:      string(w.Status),
		OwnerID:     w.OwnerID,
		CreatedBy:   w.CreatedBy,
		CreatedAt:   w.CreatedAt.Format(timeLayout),
		UpdatedAt:   w.UpdatedAt.Format(timeLayout),
	}
}

func toWorkerResponses(ws []domain.Worker) []WorkerResponse {
	out := make([]WorkerResponse, len(ws))
	for i, w := range ws {
		out[i] = toWorkerResponse(w)
	}
	return out
}

// VenueResponse is the public representation of a venue.
type VenueResponse struct {
	ID          string `json:"id" doc:"Venue ID"`
	Name        string `json:"name" doc:"Venue name"`
	Category    string `json:"category" doc:"Venue category"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description"`
	PriceLevel  int    `json:"price_level" doc:"Price level from 0 to 4"`
	PhotoURL    string `json:"photo_url"`
	Status      string `json:"status" doc:"Lifecycle state" enum:"pending,approved,rejected,removed"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (RFC 3339)"`
}

func toVenueResponse(v domain.Venue) VenueResponse {
	return VenueResponse{
		ID:          v.ID,
		Name:        v.Name,
		Category:    string(v.Category),
		Address:     v.Address,
		City:        v.City,
		Description: v.Description,
		PriceLevel:  v.PriceLevel,
		PhotoURL:    v.PhotoURL,
		Status:      string(v.Status),
		CreatedBy:   v.CreatedBy,
		CreatedAt:   v.CreatedAt.Format(timeLayout),
		UpdatedAt:   v.UpdatedAt.Format(timeLayout),
	}
}

// AssociationResponse is one row of a worker's employment history.
type AssociationResponse struct {
	ID        string `json:"id"`
	WorkerID  string `json:"worker_id"`
	VenueID   string `json:"venue_id"`
	IsCurrent bool   `json:"is_current"`
	StartDate string `json:"start_date" doc:"When the association started (RFC 3339)"`
	EndDate   string `json:"end_date,omitempty" doc:"When the association ended (RFC 3339)"`
	Notes     string `json:"notes,omitempty"`
	CreatedBy string `json:"created_by"`
}

func toAssociationResponse(a domain.Association) AssociationResponse {
	resp := AssociationResponse{
		ID:        a.ID,
		WorkerID:  a.WorkerID,
		VenueID:   a.VenueID,
		IsCurrent: a.IsCurrent,
		StartDate: a.StartDate.Format(timeLayout),
		Notes:     a.Notes,
		CreatedBy: a.CreatedBy,
	}
	if a.EndDate != nil {
		resp.EndDate = a.EndDate.Format(timeLayout)
	}
	return resp
}

// ProposalResponse is the public representation of an edit proposal.
type ProposalResponse struct {
	ID              string         `json:"id"`
	Kind            string         `json:"kind" enum:"create,edit"`
	ItemType        string         `json:"item_type" enum:"worker,venue"`
	ItemID          string         `json:"item_id"`
	ProposedChanges map[string]any `json:"proposed_changes" doc:"Fields the proposal changes"`
	CurrentValues   map[string]any `json:"current_values,omitempty" doc:"Snapshot of the item when the proposal was filed"`
	ProposedBy      string         `json:"proposed_by"`
	Status          string         `json:"status" enum:"pending,approved,rejected"`
	ModeratorID     string         `json:"moderator_id,omitempty"`
	ModeratorNotes  string         `json:"moderator_notes,omitempty"`
	ReviewedAt      string         `json:"reviewed_at,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

func toProposalResponse(p domain.Proposal) ProposalResponse {
	resp := ProposalResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		ItemType:        string(p.ItemType),
		ItemID:          p.ItemID,
		ProposedChanges: flattenChanges(p.Changes),
		ProposedBy:      p.ProposedBy,
		Status:          string(p.Status),
		ModeratorID:     p.ModeratorID,
		ModeratorNotes:  p.ModeratorNotes,
		CreatedAt:       p.CreatedAt.Format(timeLayout),
	}
	if len(p.CurrentValues) > 0 {
		// Snapshots are written by the service as objects; anything else is dropped.
		_ = json.Unmarshal(p.CurrentValues, &resp.CurrentValues)
	}
	if p.ReviewedAt != nil {
		resp.ReviewedAt = p.ReviewedAt.Format(timeLayout)
	}
	return resp
}

// flattenChanges renders typed changes as the flat field map clients send.
func flattenChanges(c domain.ProposedChanges) map[string]any {
	out := map[string]any{}
	if w := c.Worker; w != nil {
		setIf(out, "name", w.Name)
		setIf(out, "bio", w.Bio)
		setIf(out, "photo_url", w.PhotoURL)
		setIf(out, "is_freelance", w.IsFreelance)
		if w.Venues != nil {
			ids := w.Venues.VenueIDs
			if ids == nil {
				ids = []string{}
			}
			out["venue_ids"] = ids
		}
	}
	if v := c.Venue; v != nil {
		setIf(out, "name", v.Name)
		setIf(out, "category", v.Category)
		setIf(out, "address", v.Address)
		setIf(out, "city", v.City)
		setIf(out, "description", v.Description)
		setIf(out, "price_level", v.PriceLevel)
		setIf(out, "photo_url", v.PhotoURL)
	}
	return out
}

func setIf[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

// QueueEntryResponse is one moderation queue row.
type QueueEntryResponse struct {
	ID          string `json:"id"`
	ItemType    string `json:"item_type" enum:"worker,venue"`
	ItemID      string `json:"item_id"`
	SubmittedBy string `json:"submitted_by"`
	Status      string `json:"status" enum:"pending,approved,rejected"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	ReviewedAt  string `json:"reviewed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toQueueEntryResponse(e domain.QueueEntry) QueueEntryResponse {
	resp := QueueEntryResponse{
		ID:          e.ID,
		ItemType:    string(e.ItemType),
		ItemID:      e.ItemID,
		SubmittedBy: e.SubmittedBy,
		Status:      string(e.Status),
		ReviewedBy:  e.ReviewedBy,
		CreatedAt:   e.CreatedAt.Format(timeLayout),
	}
	if e.ReviewedAt != nil {
		resp.ReviewedAt = e.ReviewedAt.Format(timeLayout)
	}
	return resp
}

// SuccessBody acknowledges a review action.
type SuccessBody struct {
	Success bool `json:"success"`
}

// ReviewBody carries optional moderator notes.
type ReviewBody struct {
	Notes string `json:"notes,omitempty" maxLength:"1000" doc:"Moderator notes"`
}

// EventBody names a lifecycle event to fire.
type EventBody struct {
	Event string `json:"event" enum:"approve,reject,resubmit,remove" doc:"Lifecycle event"`
}

// PageQuery is shared by list endpoints.
type PageQuery struct {
	Limit  int `query:"limit" minimum:"0" maximum:"200" doc:"Maximum number of results (default 50)"`
	Offset int `query:"offset" minimum:"0" doc:"Number of results to skip"`
}
