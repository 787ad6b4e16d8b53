package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// CreateWorkerCommand is the payload of a new worker profile.
type CreateWorkerCommand struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Bio         string   `json:"bio" validate:"max=2000"`
	PhotoURL    string   `json:"photo_url" validate:"omitempty,url"`
	IsFreelance bool     `json:"is_freelance"`
	OwnerID     string   `json:"owner_id"`
	VenueIDs    []string `json:"venue_ids" validate:"dive,required"`
	Notes       string   `json:"notes" validate:"max=500"`
}

// CreateVenueCommand is the payload of a new venue.
type CreateVenueCommand struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Category    domain.Category `json:"category" validate:"required"`
	Address     string          `json:"address" validate:"max=500"`
	City        string          `json:"city" validate:"max=100"`
	Description string          `json:"description" validate:"max=2000"`
	PriceLevel  int             `json:"price_level" validate:"min=0,max=4"`
	PhotoURL    string          `json:"photo_url" validate:"omitempty,url"`
}

// CreateWorker runs the creation saga: insert the worker, attach its initial
// venues, and enqueue it for moderation. Any failure after the first write
// deletes what was written, newest first, and returns the original error.
func (s *Service) CreateWorker(ctx context.Context, actor domain.Actor, cmd CreateWorkerCommand) (domain.Worker, error) {
	if err := requireActor(actor); err != nil {
		return domain.Worker{}, err
	}
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := s.check(cmd); err != nil {
		return domain.Worker{}, err
	}
	if err := s.freelance.Validate(ctx, "", cmd.IsFreelance, cmd.VenueIDs); err != nil {
		return domain.Worker{}, err
	}

	ownerID := actor.ID
	if cmd.OwnerID != "" && actor.IsPrivileged() {
		ownerID = cmd.OwnerID
	}

	workerID, err := newID()
	if err != nil {
		return domain.Worker{}, fmt.Errorf("generating worker id: %w", err)
	}
	entryID, err := newID()
	if err != nil {
		return domain.Worker{}, fmt.Errorf("generating queue entry id: %w", err)
	}

	worker := domain.NewWorker(workerID, cmd.Name, ownerID, actor.ID)
	worker.Bio = cmd.Bio
	worker.PhotoURL = cmd.PhotoURL
	worker.IsFreelance = cmd.IsFreelance

	undo := newCompensations(s.log)

	// Step 1: the worker row. Nothing to undo if it fails.
	if err := s.workers.Create(ctx, worker); err != nil {
		return domain.Worker{}, persistence("creating worker", err)
	}
	undo.add("delete worker", func(ctx context.Context) error {
		return s.workers.Delete(ctx, worker.ID)
	})

	// Step 2: initial associations, inserted directly since none exist yet.
	for _, venueID := range cmd.VenueIDs {
		assocID, err := newID()
		if err != nil {
			undo.rollback(ctx, err)
			return domain.Worker{}, fmt.Errorf("generating association id: %w", err)
		}

		assoc := domain.NewAssociation(assocID, worker.ID, venueID, actor.ID, cmd.Notes)
		if err := s.assocs.Insert(ctx, assoc); err != nil {
			undo.rollback(ctx, err)
			return domain.Worker{}, persistence("attaching initial venue", err)
		}
		undo.add("delete association", func(ctx context.Context) error {
			return s.assocs.Delete(ctx, assoc.ID)
		})
	}

	// Step 3: moderation queue entry.
	entry := domain.NewQueueEntry(entryID, domain.ItemWorker, worker.ID, actor.ID)
	if err := s.queue.Enqueue(ctx, entry); err != nil {
		undo.rollback(ctx, err)
		return domain.Worker{}, persistence("enqueueing worker for moderation", err)
	}

	s.log.InfoContext(ctx, "worker created",
		"worker_id", worker.ID,
		"actor_id", actor.ID,
		"venues", len(cmd.VenueIDs),
		"freelance", worker.IsFreelance,
	)

	changes := domain.WorkerChanges{
		Name:        &worker.Name,
		Bio:         &worker.Bio,
		PhotoURL:    &worker.PhotoURL,
		IsFreelance: &worker.IsFreelance,
	}
	if len(cmd.VenueIDs) > 0 {
		changes.Venues = &domain.VenueAssignment{VenueIDs: cmd.VenueIDs}
	}
	s.recordCreation(ctx, actor, domain.ItemWorker, worker.ID, domain.ProposedChanges{Worker: &changes})
	s.credit(ctx, domain.PointsWorkerCreated, worker.ID, actor.ID)
	s.notify(ctx, domain.Notification{
		Kind:     domain.NotifyItemSubmitted,
		ItemType: domain.ItemWorker,
		ItemID:   worker.ID,
		ActorID:  actor.ID,
		Status:   string(worker.Status),
	})

	return worker, nil
}

// CreateVenue inserts a pending venue and enqueues it for moderation,
// deleting the venue again if the queue entry cannot be written.
func (s *Service) CreateVenue(ctx context.Context, actor domain.Actor, cmd CreateVenueCommand) (domain.Venue, error) {
	if err := requireActor(actor); err != nil {
		return domain.Venue{}, err
	}
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := s.check(cmd); err != nil {
		return domain.Venue{}, err
	}
	if !domain.IsKnownCategory(cmd.Category) {
		return domain.Venue{}, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", cmd.Category)}
	}

	venueID, err := newID()
	if err != nil {
		return domain.Venue{}, fmt.Errorf("generating venue id: %w", err)
	}
	entryID, err := newID()
	if err != nil {
		return domain.Venue{}, fmt.Errorf("generating queue entry id: %w", err)
	}

	venue := domain.NewVenue(venueID, cmd.Name, cmd.Category, actor.ID)
	venue.Address = cmd.Address
	venue.City = cmd.City
	venue.Description = cmd.Description
	venue.PriceLevel = cmd.PriceLevel
	venue.PhotoURL = cmd.PhotoURL

	undo := newCompensations(s.log)

	if err := s.venues.Create(ctx, venue); err != nil {
		return domain.Venue{}, persistence("creating venue", err)
	}
	undo.add("delete venue", func(ctx context.Context) error {
		return s.venues.Delete(ctx, venue.ID)
	})

	entry := domain.NewQueueEntry(entryID, domain.ItemVenue, venue.ID, actor.ID)
	if err := s.queue.Enqueue(ctx, entry); err != nil {
		undo.rollback(ctx, err)
		return domain.Venue{}, persistence("enqueueing venue for moderation", err)
	}

	s.log.InfoContext(ctx, "venue created",
		"venue_id", venue.ID,
		"actor_id", actor.ID,
		"category", venue.Category,
	)

	changes := domain.VenueChanges{
		Name:        &venue.Name,
		Category:    &venue.Category,
		Address:     &venue.Address,
		City:        &venue.City,
		Description: &venue.Description,
		PriceLevel:  &venue.PriceLevel,
		PhotoURL:    &venue.PhotoURL,
	}
	s.recordCreation(ctx, actor, domain.ItemVenue, venue.ID, domain.ProposedChanges{Venue: &changes})
	s.notify(ctx, domain.Notification{
		Kind:     domain.NotifyItemSubmitted,
		ItemType: domain.ItemVenue,
		ItemID:   venue.ID,
		ActorID:  actor.ID,
		Status:   string(venue.Status),
	})

	return venue, nil
}

// recordCreation writes the creation audit proposal. It runs after the saga
// committed, so a failure is logged and the new entity is kept.
func (s *Service) recordCreation(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID string, changes domain.ProposedChanges) {
	id, err := newID()
	if err != nil {
		s.log.ErrorContext(ctx, "generating proposal id failed", "error", err)
		return
	}

	proposal := domain.NewProposal(id, domain.KindCreate, itemType, itemID, changes, nil, actor.ID)
	if err := s.proposals.Create(ctx, proposal); err != nil {
		s.log.ErrorContext(ctx, "recording creation proposal failed",
			"item_type", itemType,
			"item_id", itemID,
			"error", err,
		)
	}
}
