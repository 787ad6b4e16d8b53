package domain

import "time"

// Worker is a profile that can be associated with venues and reviewed.
type Worker struct {
	ID          string
	Name        string
	Bio         string
	PhotoURL    string
	IsFreelance bool
	Status      Status
	OwnerID     string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWorker creates a worker in the initial "pending" state.
func NewWorker(id, name, ownerID, createdBy string) Worker {
	now := time.Now().UTC()
	return Worker{
		ID:        id,
		Name:      name,
		Status:    StatusPending,
		OwnerID:   ownerID,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VenueAssignment replaces the full set of a worker's current venues.
// An empty VenueIDs list clears the worker's current association.
type VenueAssignment struct {
	VenueIDs []string `json:"venue_ids" validate:"dive,required"`
}

// WorkerChanges is a typed partial update of a worker. Nil fields are left
// untouched. Venues is routed to the association manager rather than
// written to the worker row.
type WorkerChanges struct {
	Name        *string          `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Bio         *string          `json:"bio,omitempty" validate:"omitempty,max=2000"`
	PhotoURL    *string          `json:"photo_url,omitempty" validate:"omitempty,url"`
	IsFreelance *bool            `json:"is_freelance,omitempty"`
	Venues      *VenueAssignment `json:"venues,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (c WorkerChanges) IsEmpty() bool {
	return c.Name == nil && c.Bio == nil && c.PhotoURL == nil && c.IsFreelance == nil && c.Venues == nil
}

// ApplyTo returns a copy of w with the row-level fields of c applied.
func (c WorkerChanges) ApplyTo(w Worker) Worker {
	if c.Name != nil {
		w.Name = *c.Name
	}
	if c.Bio != nil {
		w.Bio = *c.Bio
	}
	if c.PhotoURL != nil {
		w.PhotoURL = *c.PhotoURL
	}
	if c.IsFreelance != nil {
		w.IsFreelance = *c.IsFreelance
	}
	return w
}

// SwitchesToFreelance reports whether applying c flips w into freelance mode.
func (c WorkerChanges) SwitchesToFreelance(w Worker) bool {
	return c.IsFreelance != nil && *c.IsFreelance && !w.IsFreelance
}

// WorkerFilter holds optional criteria for listing workers.
type WorkerFilter struct {
	Status  *Status
	OwnerID string
	Limit   int
	Offset  int
}
