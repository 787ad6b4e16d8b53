package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// FreelanceValidator decides whether a worker may hold a set of current
// venue associations. It only reads venue categories and never writes.
type FreelanceValidator struct {
	venues domain.VenueRepository
}

// NewFreelanceValidator creates a validator reading from the given venues.
func NewFreelanceValidator(venues domain.VenueRepository) *FreelanceValidator {
	return &FreelanceValidator{venues: venues}
}

// Validate checks venueIDs as the complete set of current associations of
// workerID (empty for a worker that does not exist yet).
func (v *FreelanceValidator) Validate(ctx context.Context, workerID string, isFreelance bool, venueIDs []string) error {
	// Cardinality needs no reads.
	if !isFreelance && len(venueIDs) > 1 {
		ids := make([]domain.Venue, len(venueIDs))
		for i, id := range venueIDs {
			ids[i] = domain.Venue{ID: id}
		}
		return domain.CheckAssociations(workerID, false, ids)
	}

	venues := make([]domain.Venue, 0, len(venueIDs))
	for _, id := range venueIDs {
		venue, err := v.venues.GetByID(ctx, id)
		if errors.Is(err, domain.ErrVenueNotFound) {
			return &domain.ValidationError{Field: "venue_ids", Reason: fmt.Sprintf("venue %q does not exist", id)}
		}
		if err != nil {
			return persistence("loading venue", err)
		}
		if venue.Status == domain.StatusRemoved {
			return &domain.ValidationError{Field: "venue_ids", Reason: fmt.Sprintf("venue %q has been removed", id)}
		}
		venues = append(venues, venue)
	}

	return domain.CheckAssociations(workerID, isFreelance, venues)
}
