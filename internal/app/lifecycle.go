package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// TransitionWorker applies a lifecycle event to a worker on a moderator's
// request. Removing a worker ends its current associations.
func (s *Service) TransitionWorker(ctx context.Context, actor domain.Actor, id string, event domain.Event) (domain.Worker, error) {
	if err := requirePrivileged(actor, "change worker status"); err != nil {
		return domain.Worker{}, err
	}
	if !event.Valid() {
		return domain.Worker{}, &domain.ValidationError{Field: "event", Reason: fmt.Sprintf("unknown event %q", event)}
	}

	worker, err := s.moveWorker(ctx, id, event, newCompensations(s.log))
	if err != nil {
		return domain.Worker{}, err
	}

	if event == domain.EventRemove {
		// Reconcile to nothing only ends rows, and ending is best-effort.
		if _, err := s.employments.Reconcile(ctx, id, nil, actor.ID, ""); err != nil {
			s.log.WarnContext(ctx, "ending associations of removed worker failed", "worker_id", id, "error", err)
		}
	}
	s.afterTransition(ctx, actor, domain.ItemWorker, id, worker.CreatedBy, event)

	s.log.InfoContext(ctx, "worker status changed",
		"worker_id", id,
		"event", event,
		"status", worker.Status,
		"actor_id", actor.ID,
	)
	return worker, nil
}

// TransitionVenue applies a lifecycle event to a venue. Removing a venue
// ends every current association at it.
func (s *Service) TransitionVenue(ctx context.Context, actor domain.Actor, id string, event domain.Event) (domain.Venue, error) {
	if err := requirePrivileged(actor, "change venue status"); err != nil {
		return domain.Venue{}, err
	}
	if !event.Valid() {
		return domain.Venue{}, &domain.ValidationError{Field: "event", Reason: fmt.Sprintf("unknown event %q", event)}
	}

	venue, err := s.moveVenue(ctx, id, event, newCompensations(s.log))
	if err != nil {
		return domain.Venue{}, err
	}

	if event == domain.EventRemove {
		s.employments.EndAtVenue(ctx, id)
	}
	s.afterTransition(ctx, actor, domain.ItemVenue, id, venue.CreatedBy, event)

	s.log.InfoContext(ctx, "venue status changed",
		"venue_id", id,
		"event", event,
		"status", venue.Status,
		"actor_id", actor.ID,
	)
	return venue, nil
}

// afterTransition keeps the moderation queue and creation proposals in line
// with a status change made outside the queue.
func (s *Service) afterTransition(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID, creator string, event domain.Event) {
	var verdict domain.ReviewStatus
	switch event {
	case domain.EventApprove:
		verdict = domain.ReviewApproved
	case domain.EventReject, domain.EventRemove:
		verdict = domain.ReviewRejected
	case domain.EventResubmit:
		s.requeue(ctx, actor, itemType, itemID)
		return
	}

	s.settleQueue(ctx, actor, itemType, itemID, verdict)
	s.settleCreation(ctx, actor, itemType, itemID, verdict, "")
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyItemReviewed,
		ItemType:    itemType,
		ItemID:      itemID,
		ActorID:     actor.ID,
		RecipientID: creator,
		Status:      string(verdict),
	})
}

// GrantVenueOwner gives userID owner rights over a venue.
func (s *Service) GrantVenueOwner(ctx context.Context, actor domain.Actor, venueID, userID string, perms domain.VenuePermissions) error {
	if err := requirePrivileged(actor, "grant venue ownership"); err != nil {
		return err
	}
	if userID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return persistence("loading venue", err)
	}

	if err := s.access.GrantVenue(ctx, venueID, userID, perms); err != nil {
		return persistence("granting venue ownership", err)
	}

	s.log.InfoContext(ctx, "venue owner granted",
		"venue_id", venueID,
		"user_id", userID,
		"actor_id", actor.ID,
	)
	return nil
}
