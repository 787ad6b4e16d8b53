package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// ListQueue returns moderation queue entries, optionally filtered by status.
func (s *Service) ListQueue(ctx context.Context, actor domain.Actor, status *domain.ReviewStatus) ([]domain.QueueEntry, error) {
	if err := requirePrivileged(actor, "view the moderation queue"); err != nil {
		return nil, err
	}

	entries, err := s.queue.List(ctx, status)
	if err != nil {
		return nil, persistence("listing moderation queue", err)
	}
	return entries, nil
}

// ReviewQueueEntry decides on a newly created item: the item moves through
// its lifecycle, then the entry is resolved. If the entry cannot be resolved
// the item's previous status is restored.
func (s *Service) ReviewQueueEntry(ctx context.Context, actor domain.Actor, id string, decision domain.Decision, notes string) (domain.QueueEntry, error) {
	if err := requirePrivileged(actor, "review the moderation queue"); err != nil {
		return domain.QueueEntry{}, err
	}
	if !decision.Valid() {
		return domain.QueueEntry{}, &domain.ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", decision)}
	}

	entry, err := s.queue.GetByID(ctx, id)
	if err != nil {
		return domain.QueueEntry{}, persistence("loading queue entry", err)
	}

	next, err := s.review.Apply(ctx, entry.Status, decision)
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return domain.QueueEntry{}, domain.ErrAlreadyReviewed
	}
	if err != nil {
		return domain.QueueEntry{}, err
	}

	undo := newCompensations(s.log)
	if err := s.moveItem(ctx, entry.ItemType, entry.ItemID, decision.LifecycleEvent(), undo); err != nil {
		return domain.QueueEntry{}, err
	}

	now := time.Now().UTC()
	entry.Status = next
	entry.ReviewedBy = actor.ID
	entry.ReviewedAt = &now
	if err := s.queue.Resolve(ctx, entry); err != nil {
		undo.rollback(ctx, err)
		return domain.QueueEntry{}, persistence("resolving queue entry", err)
	}

	s.settleCreation(ctx, actor, entry.ItemType, entry.ItemID, next, notes)

	s.log.InfoContext(ctx, "queue entry reviewed",
		"entry_id", entry.ID,
		"item_type", entry.ItemType,
		"item_id", entry.ItemID,
		"decision", decision,
		"moderator_id", actor.ID,
	)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyItemReviewed,
		ItemType:    entry.ItemType,
		ItemID:      entry.ItemID,
		ActorID:     actor.ID,
		RecipientID: entry.SubmittedBy,
		Status:      string(next),
	})

	return entry, nil
}

// moveItem applies a lifecycle event to a worker or venue and registers the
// restore of its previous status on undo.
func (s *Service) moveItem(ctx context.Context, itemType domain.ItemType, itemID string, event domain.Event, undo *compensations) error {
	switch itemType {
	case domain.ItemWorker:
		_, err := s.moveWorker(ctx, itemID, event, undo)
		return err
	case domain.ItemVenue:
		_, err := s.moveVenue(ctx, itemID, event, undo)
		return err
	}
	return &domain.ValidationError{Field: "item_type", Reason: fmt.Sprintf("unknown item type %q", itemType)}
}

func (s *Service) moveWorker(ctx context.Context, id string, event domain.Event, undo *compensations) (domain.Worker, error) {
	worker, err := s.workers.GetByID(ctx, id)
	if err != nil {
		return domain.Worker{}, persistence("loading worker", err)
	}

	next, err := s.lifecycle.Apply(ctx, worker.Status, event)
	if err != nil {
		return domain.Worker{}, err
	}

	updated := worker
	updated.Status = next
	updated.UpdatedAt = time.Now().UTC()
	if err := s.workers.Update(ctx, updated); err != nil {
		return domain.Worker{}, persistence("updating worker status", err)
	}
	undo.add("restore worker status", func(ctx context.Context) error {
		return s.workers.Update(ctx, worker)
	})

	return updated, nil
}

func (s *Service) moveVenue(ctx context.Context, id string, event domain.Event, undo *compensations) (domain.Venue, error) {
	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return domain.Venue{}, persistence("loading venue", err)
	}

	next, err := s.lifecycle.Apply(ctx, venue.Status, event)
	if err != nil {
		return domain.Venue{}, err
	}

	updated := venue
	updated.Status = next
	updated.UpdatedAt = time.Now().UTC()
	if err := s.venues.Update(ctx, updated); err != nil {
		return domain.Venue{}, persistence("updating venue status", err)
	}
	undo.add("restore venue status", func(ctx context.Context) error {
		return s.venues.Update(ctx, venue)
	})

	return updated, nil
}

// settleCreation closes the item's pending creation proposals with the
// queue verdict. Best-effort: the proposals are an audit trail only.
func (s *Service) settleCreation(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID string, status domain.ReviewStatus, notes string) {
	pending := domain.ReviewPending
	kind := domain.KindCreate
	proposals, err := s.proposals.List(ctx, domain.ProposalFilter{
		Status:   &pending,
		Kind:     &kind,
		ItemType: &itemType,
		ItemID:   itemID,
	})
	if err != nil {
		s.log.WarnContext(ctx, "listing creation proposals failed", "item_id", itemID, "error", err)
		return
	}

	for _, p := range proposals {
		p.MarkReviewed(status, actor.ID, notes)
		if err := s.proposals.Review(ctx, p); err != nil && !errors.Is(err, domain.ErrAlreadyReviewed) {
			s.log.WarnContext(ctx, "closing creation proposal failed", "proposal_id", p.ID, "error", err)
		}
	}
}

// settleQueue resolves the item's pending queue entries with status.
func (s *Service) settleQueue(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID string, status domain.ReviewStatus) {
	pending := domain.ReviewPending
	entries, err := s.queue.List(ctx, &pending)
	if err != nil {
		s.log.WarnContext(ctx, "listing moderation queue failed", "item_id", itemID, "error", err)
		return
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.ItemType != itemType || entry.ItemID != itemID {
			continue
		}
		entry.Status = status
		entry.ReviewedBy = actor.ID
		entry.ReviewedAt = &now
		if err := s.queue.Resolve(ctx, entry); err != nil && !errors.Is(err, domain.ErrAlreadyReviewed) {
			s.log.WarnContext(ctx, "resolving queue entry failed", "entry_id", entry.ID, "error", err)
		}
	}
}

// requeue puts an item that went back to pending on the moderation queue.
// The item is already pending, so a failure is logged only.
func (s *Service) requeue(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID string) {
	id, err := newID()
	if err != nil {
		s.log.ErrorContext(ctx, "generating queue entry id failed", "error", err)
		return
	}

	entry := domain.NewQueueEntry(id, itemType, itemID, actor.ID)
	if err := s.queue.Enqueue(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "requeueing item failed",
			"item_type", itemType,
			"item_id", itemID,
			"error", err,
		)
		return
	}

	s.notify(ctx, domain.Notification{
		Kind:     domain.NotifyItemSubmitted,
		ItemType: itemType,
		ItemID:   itemID,
		ActorID:  actor.ID,
		Status:   string(domain.StatusPending),
	})
}
