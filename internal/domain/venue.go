package domain

import "time"

// Category classifies a venue.
type Category string

// CategoryNightclub is the only category freelance workers may be associated with.
const CategoryNightclub Category = "Nightclub"

// Categories lists the venue categories the directory accepts.
var Categories = []Category{
	CategoryNightclub,
	"Bar",
	"Lounge",
	"Restaurant",
	"Spa",
	"Club",
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c Category) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Venue is an establishment workers can be associated with.
type Venue struct {
	ID          string
	Name        string
	Category    Category
	Address     string
	City        string
	Description string
	PriceLevel  int
	PhotoURL    string
	Status      Status
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewVenue creates a venue in the initial "pending" state.
func NewVenue(id, name string, category Category, createdBy string) Venue {
	now := time.Now().UTC()
	return Venue{
		ID:        id,
		Name:      name,
		Category:  category,
		Status:    StatusPending,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VenueChanges is a typed partial update of a venue.
type VenueChanges struct {
	Name        *string   `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Category    *Category `json:"category,omitempty"`
	Address     *string   `json:"address,omitempty" validate:"omitempty,max=500"`
	City        *string   `json:"city,omitempty" validate:"omitempty,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceLevel  *int      `json:"price_level,omitempty" validate:"omitnil,min=0,max=4"`
	PhotoURL    *string   `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// IsEmpty reports whether the update carries no field at all.
func (c VenueChanges) IsEmpty() bool {
	return !c.touchesInfo() && !c.touchesPricing() && !c.touchesPhotos()
}

func (c VenueChanges) touchesInfo() bool {
	return c.Name != nil || c.Category != nil || c.Address != nil || c.City != nil || c.Description != nil
}

func (c VenueChanges) touchesPricing() bool { return c.PriceLevel != nil }

func (c VenueChanges) touchesPhotos() bool { return c.PhotoURL != nil }

// PermittedBy reports whether an owner holding p may apply c directly.
func (c VenueChanges) PermittedBy(p VenuePermissions) bool {
	if c.touchesInfo() && !p.CanEditInfo {
		return false
	}
	if c.touchesPricing() && !p.CanEditPricing {
		return false
	}
	if c.touchesPhotos() && !p.CanEditPhotos {
		return false
	}
	return true
}

// ApplyTo returns a copy of v with c applied.
func (c VenueChanges) ApplyTo(v Venue) Venue {
	if c.Name != nil {
		v.Name = *c.Name
	}
	if c.Category != nil {
		v.Category = *c.Category
	}
	if c.Address != nil {
		v.Address = *c.Address
	}
	if c.City != nil {
		v.City = *c.City
	}
	if c.Description != nil {
		v.Description = *c.Description
	}
	if c.PriceLevel != nil {
		v.PriceLevel = *c.PriceLevel
	}
	if c.PhotoURL != nil {
		v.PhotoURL = *c.PhotoURL
	}
	return v
}

// VenueFilter holds optional criteria for listing venues.
type VenueFilter struct {
	Status   *Status
	Category *Category
	Limit    int
	Offset   int
}
