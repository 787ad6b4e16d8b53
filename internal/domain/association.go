package domain

import (
	"fmt"
	"time"
)

// Association is one employment_history row linking a worker to a venue.
type Association struct {
	ID        string
	WorkerID  string
	VenueID   string
	IsCurrent bool
	StartDate time.Time
	EndDate   *time.Time
	Notes     string
	CreatedBy string
}

// NewAssociation creates a current association starting now.
func NewAssociation(id, workerID, venueID, createdBy, notes string) Association {
	return Association{
		ID:        id,
		WorkerID:  workerID,
		VenueID:   venueID,
		IsCurrent: true,
		StartDate: time.Now().UTC(),
		Notes:     notes,
		CreatedBy: createdBy,
	}
}

// CheckAssociations decides whether a worker with the given freelance flag
// may hold every venue in venues as a current association at once.
// Regular workers hold at most one current venue; freelance workers may hold
// several, but only at venues of CategoryNightclub. There is no check across
// workers: a venue may employ any number of them.
func CheckAssociations(workerID string, isFreelance bool, venues []Venue) error {
	seen := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		if _, dup := seen[v.ID]; dup {
			return &ConflictError{Reason: fmt.Sprintf("venue %q is listed more than once", v.ID)}
		}
		seen[v.ID] = struct{}{}
	}

	if !isFreelance {
		if len(venues) > 1 {
			return &BusinessRuleError{
				WorkerID: workerID,
				Reason:   fmt.Sprintf("a regular worker can have only one current venue, got %d", len(venues)),
			}
		}
		return nil
	}

	for _, v := range venues {
		if v.Category != CategoryNightclub {
			return &BusinessRuleError{
				WorkerID: workerID,
				VenueID:  v.ID,
				Reason: fmt.Sprintf("freelance workers can only be associated with %s venues, %q is a %s",
					CategoryNightclub, v.Name, v.Category),
			}
		}
	}
	return nil
}

// VenueIDs returns the venue ids of the given associations in order.
func VenueIDs(assocs []Association) []string {
	out := make([]string, len(assocs))
	for i, a := range assocs {
		out[i] = a.VenueID
	}
	return out
}
