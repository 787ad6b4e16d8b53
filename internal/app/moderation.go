package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// SubmitProposalCommand asks for an edit to an existing worker or venue.
type SubmitProposalCommand struct {
	ItemType      domain.ItemType        `json:"item_type" validate:"required,oneof=worker venue"`
	ItemID        string                 `json:"item_id" validate:"required"`
	Changes       domain.ProposedChanges `json:"proposed_changes"`
	CurrentValues json.RawMessage        `json:"current_values"`
}

// workerEdit is a validated worker change that has not been written yet.
type workerEdit struct {
	before  domain.Worker
	after   domain.Worker
	current []domain.Association
	changes domain.WorkerChanges
}

// venueEdit is a validated venue change that has not been written yet.
type venueEdit struct {
	before  domain.Venue
	after   domain.Venue
	changes domain.VenueChanges
}

// SubmitProposal routes an edit by the actor's role. Privileged actors have
// the change applied at once and get back an approved proposal with
// autoApproved set; everyone else files a pending proposal and the item is
// left untouched.
func (s *Service) SubmitProposal(ctx context.Context, actor domain.Actor, cmd SubmitProposalCommand) (proposal domain.Proposal, autoApproved bool, err error) {
	if err := requireActor(actor); err != nil {
		return domain.Proposal{}, false, err
	}
	if err := s.check(cmd); err != nil {
		return domain.Proposal{}, false, err
	}
	if err := matchChanges(cmd.ItemType, cmd.Changes); err != nil {
		return domain.Proposal{}, false, err
	}

	id, err := newID()
	if err != nil {
		return domain.Proposal{}, false, fmt.Errorf("generating proposal id: %w", err)
	}

	if cmd.ItemType == domain.ItemWorker {
		return s.submitWorkerProposal(ctx, actor, id, cmd)
	}
	return s.submitVenueProposal(ctx, actor, id, cmd)
}

func (s *Service) submitWorkerProposal(ctx context.Context, actor domain.Actor, id string, cmd SubmitProposalCommand) (domain.Proposal, bool, error) {
	worker, err := s.workers.GetByID(ctx, cmd.ItemID)
	if err != nil {
		return domain.Proposal{}, false, persistence("loading worker", err)
	}

	edit, err := s.planWorkerEdit(ctx, worker, *cmd.Changes.Worker)
	if err != nil {
		return domain.Proposal{}, false, err
	}

	current := cmd.CurrentValues
	if len(current) == 0 {
		if current, err = snapshotWorker(worker, edit.current); err != nil {
			return domain.Proposal{}, false, err
		}
	}
	proposal := domain.NewProposal(id, domain.KindEdit, domain.ItemWorker, worker.ID, cmd.Changes, current, actor.ID)

	if !actor.IsPrivileged() {
		return s.fileProposal(ctx, proposal)
	}

	if _, err := s.applyWorkerEdit(ctx, actor, edit, false, "", newCompensations(s.log)); err != nil {
		return domain.Proposal{}, false, err
	}
	proposal.MarkReviewed(domain.ReviewApproved, actor.ID, domain.AutoApprovalNote)
	s.recordAudit(ctx, proposal)
	s.credit(ctx, domain.PointsWorkerUpdated, worker.ID, actor.ID)

	return proposal, true, nil
}

func (s *Service) submitVenueProposal(ctx context.Context, actor domain.Actor, id string, cmd SubmitProposalCommand) (domain.Proposal, bool, error) {
	venue, err := s.venues.GetByID(ctx, cmd.ItemID)
	if err != nil {
		return domain.Proposal{}, false, persistence("loading venue", err)
	}

	edit, err := s.planVenueEdit(ctx, venue, *cmd.Changes.Venue)
	if err != nil {
		return domain.Proposal{}, false, err
	}

	current := cmd.CurrentValues
	if len(current) == 0 {
		if current, err = snapshotVenue(venue); err != nil {
			return domain.Proposal{}, false, err
		}
	}
	proposal := domain.NewProposal(id, domain.KindEdit, domain.ItemVenue, venue.ID, cmd.Changes, current, actor.ID)

	if !actor.IsPrivileged() {
		return s.fileProposal(ctx, proposal)
	}

	if _, err := s.applyVenueEdit(ctx, edit, false, newCompensations(s.log)); err != nil {
		return domain.Proposal{}, false, err
	}
	proposal.MarkReviewed(domain.ReviewApproved, actor.ID, domain.AutoApprovalNote)
	s.recordAudit(ctx, proposal)

	return proposal, true, nil
}

// fileProposal stores a pending proposal. This is the only write of an
// ordinary submission, so a failure is returned.
func (s *Service) fileProposal(ctx context.Context, proposal domain.Proposal) (domain.Proposal, bool, error) {
	if err := s.proposals.Create(ctx, proposal); err != nil {
		return domain.Proposal{}, false, persistence("creating proposal", err)
	}

	s.log.InfoContext(ctx, "proposal submitted",
		"proposal_id", proposal.ID,
		"item_type", proposal.ItemType,
		"item_id", proposal.ItemID,
		"actor_id", proposal.ProposedBy,
	)
	s.notify(ctx, domain.Notification{
		Kind:       domain.NotifyProposalSubmitted,
		ItemType:   proposal.ItemType,
		ItemID:     proposal.ItemID,
		ProposalID: proposal.ID,
		ActorID:    proposal.ProposedBy,
		Status:     string(proposal.Status),
	})
	return proposal, false, nil
}

// ApproveProposal applies a pending edit proposal through the same path as
// a privileged edit and marks it approved. If the verdict cannot be stored
// the applied change is rolled back.
func (s *Service) ApproveProposal(ctx context.Context, actor domain.Actor, id, notes string) (domain.Proposal, error) {
	if err := requirePrivileged(actor, "approve proposals"); err != nil {
		return domain.Proposal{}, err
	}

	proposal, next, err := s.loadForReview(ctx, id, domain.DecisionApprove)
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := matchChanges(proposal.ItemType, proposal.Changes); err != nil {
		return domain.Proposal{}, err
	}

	undo := newCompensations(s.log)
	note := fmt.Sprintf("approved proposal %s", proposal.ID)

	switch proposal.ItemType {
	case domain.ItemWorker:
		worker, err := s.workers.GetByID(ctx, proposal.ItemID)
		if err != nil {
			return domain.Proposal{}, persistence("loading worker", err)
		}
		edit, err := s.planWorkerEdit(ctx, worker, *proposal.Changes.Worker)
		if err != nil {
			return domain.Proposal{}, err
		}
		if _, err := s.applyWorkerEdit(ctx, actor, edit, false, note, undo); err != nil {
			return domain.Proposal{}, err
		}
	case domain.ItemVenue:
		venue, err := s.venues.GetByID(ctx, proposal.ItemID)
		if err != nil {
			return domain.Proposal{}, persistence("loading venue", err)
		}
		edit, err := s.planVenueEdit(ctx, venue, *proposal.Changes.Venue)
		if err != nil {
			return domain.Proposal{}, err
		}
		if _, err := s.applyVenueEdit(ctx, edit, false, undo); err != nil {
			return domain.Proposal{}, err
		}
	}

	proposal.MarkReviewed(next, actor.ID, notes)
	if err := s.proposals.Review(ctx, proposal); err != nil {
		undo.rollback(ctx, err)
		return domain.Proposal{}, persistence("recording approval", err)
	}

	s.log.InfoContext(ctx, "proposal approved",
		"proposal_id", proposal.ID,
		"item_type", proposal.ItemType,
		"item_id", proposal.ItemID,
		"moderator_id", actor.ID,
	)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyProposalApproved,
		ItemType:    proposal.ItemType,
		ItemID:      proposal.ItemID,
		ProposalID:  proposal.ID,
		ActorID:     actor.ID,
		RecipientID: proposal.ProposedBy,
		Status:      string(proposal.Status),
	})
	if proposal.ItemType == domain.ItemWorker {
		s.credit(ctx, domain.PointsWorkerUpdated, proposal.ItemID, proposal.ProposedBy)
	}

	return proposal, nil
}

// RejectProposal marks a pending edit proposal rejected. The item is never touched.
func (s *Service) RejectProposal(ctx context.Context, actor domain.Actor, id, notes string) (domain.Proposal, error) {
	if err := requirePrivileged(actor, "reject proposals"); err != nil {
		return domain.Proposal{}, err
	}

	proposal, next, err := s.loadForReview(ctx, id, domain.DecisionReject)
	if err != nil {
		return domain.Proposal{}, err
	}

	proposal.MarkReviewed(next, actor.ID, notes)
	if err := s.proposals.Review(ctx, proposal); err != nil {
		return domain.Proposal{}, persistence("recording rejection", err)
	}

	s.log.InfoContext(ctx, "proposal rejected",
		"proposal_id", proposal.ID,
		"moderator_id", actor.ID,
	)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyProposalRejected,
		ItemType:    proposal.ItemType,
		ItemID:      proposal.ItemID,
		ProposalID:  proposal.ID,
		ActorID:     actor.ID,
		RecipientID: proposal.ProposedBy,
		Status:      string(proposal.Status),
	})

	return proposal, nil
}

func (s *Service) loadForReview(ctx context.Context, id string, decision domain.Decision) (domain.Proposal, domain.ReviewStatus, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return domain.Proposal{}, "", persistence("loading proposal", err)
	}
	if proposal.Kind == domain.KindCreate {
		return domain.Proposal{}, "", &domain.ConflictError{Reason: "creation proposals are resolved through the moderation queue"}
	}

	next, err := s.review.Apply(ctx, proposal.Status, decision)
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return domain.Proposal{}, "", domain.ErrAlreadyReviewed
	}
	if err != nil {
		return domain.Proposal{}, "", err
	}
	return proposal, next, nil
}

// UpdateWorker applies a direct edit by the worker's owner, the worker
// itself, or a privileged actor. Non-privileged edits send the worker back
// to pending review.
func (s *Service) UpdateWorker(ctx context.Context, actor domain.Actor, id string, changes domain.WorkerChanges) (domain.Worker, error) {
	if err := requireActor(actor); err != nil {
		return domain.Worker{}, err
	}

	worker, err := s.workers.GetByID(ctx, id)
	if err != nil {
		return domain.Worker{}, persistence("loading worker", err)
	}
	if !actor.IsPrivileged() && worker.OwnerID != actor.ID && worker.ID != actor.ID {
		return domain.Worker{}, &domain.AuthorizationError{ActorID: actor.ID, Action: "edit worker " + id}
	}

	edit, err := s.planWorkerEdit(ctx, worker, changes)
	if err != nil {
		return domain.Worker{}, err
	}
	current, err := snapshotWorker(worker, edit.current)
	if err != nil {
		return domain.Worker{}, err
	}

	updated, err := s.applyWorkerEdit(ctx, actor, edit, !actor.IsPrivileged(), "", newCompensations(s.log))
	if err != nil {
		return domain.Worker{}, err
	}

	s.recordDirectEdit(ctx, actor, domain.ItemWorker, id, domain.ProposedChanges{Worker: &changes}, current)
	s.credit(ctx, domain.PointsWorkerUpdated, id, actor.ID)
	if updated.Status != worker.Status {
		s.requeue(ctx, actor, domain.ItemWorker, id)
	}

	return updated, nil
}

// UpdateVenue applies a direct edit by a privileged actor or a venue owner
// whose grant covers every touched field.
func (s *Service) UpdateVenue(ctx context.Context, actor domain.Actor, id string, changes domain.VenueChanges) (domain.Venue, error) {
	if err := requireActor(actor); err != nil {
		return domain.Venue{}, err
	}

	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return domain.Venue{}, persistence("loading venue", err)
	}
	if !actor.IsPrivileged() {
		perms, owns, err := s.access.VenuePermissions(ctx, actor.ID, id)
		if err != nil {
			return domain.Venue{}, persistence("checking venue ownership", err)
		}
		if !owns || !changes.PermittedBy(perms) {
			return domain.Venue{}, &domain.AuthorizationError{ActorID: actor.ID, Action: "edit venue " + id}
		}
	}

	edit, err := s.planVenueEdit(ctx, venue, changes)
	if err != nil {
		return domain.Venue{}, err
	}
	current, err := snapshotVenue(venue)
	if err != nil {
		return domain.Venue{}, err
	}

	updated, err := s.applyVenueEdit(ctx, edit, !actor.IsPrivileged(), newCompensations(s.log))
	if err != nil {
		return domain.Venue{}, err
	}

	s.recordDirectEdit(ctx, actor, domain.ItemVenue, id, domain.ProposedChanges{Venue: &changes}, current)
	if updated.Status != venue.Status {
		s.requeue(ctx, actor, domain.ItemVenue, id)
	}

	return updated, nil
}

// planWorkerEdit validates changes against the stored worker without writing.
func (s *Service) planWorkerEdit(ctx context.Context, worker domain.Worker, changes domain.WorkerChanges) (workerEdit, error) {
	if changes.IsEmpty() {
		return workerEdit{}, &domain.ValidationError{Reason: "no changes provided"}
	}
	if err := s.check(changes); err != nil {
		return workerEdit{}, err
	}
	if worker.Status == domain.StatusRemoved {
		return workerEdit{}, &domain.TransitionError{Event: "edit", Current: string(worker.Status)}
	}

	current, err := s.assocs.ListCurrentByWorker(ctx, worker.ID)
	if err != nil {
		return workerEdit{}, persistence("loading current associations", err)
	}

	edit := workerEdit{
		before:  worker,
		after:   changes.ApplyTo(worker),
		current: current,
		changes: changes,
	}

	switch {
	case changes.Venues != nil:
		err = s.freelance.Validate(ctx, worker.ID, edit.after.IsFreelance, changes.Venues.VenueIDs)
	case worker.IsFreelance && !edit.after.IsFreelance:
		// The kept venues must now fit a regular worker.
		err = s.freelance.Validate(ctx, worker.ID, false, domain.VenueIDs(current))
	}
	if err != nil {
		return workerEdit{}, err
	}
	return edit, nil
}

// applyWorkerEdit writes a planned worker edit. On failure it rolls back
// every step it registered on undo; on success the steps stay registered so
// the caller can undo the whole edit if a later write fails.
func (s *Service) applyWorkerEdit(ctx context.Context, actor domain.Actor, edit workerEdit, resubmit bool, note string, undo *compensations) (domain.Worker, error) {
	updated := edit.after
	if resubmit && updated.Status != domain.StatusPending {
		next, err := s.lifecycle.Apply(ctx, updated.Status, domain.EventResubmit)
		if err != nil {
			return domain.Worker{}, err
		}
		updated.Status = next
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.workers.Update(ctx, updated); err != nil {
		return domain.Worker{}, persistence("updating worker", err)
	}
	before := edit.before
	undo.add("restore worker", func(ctx context.Context) error {
		return s.workers.Update(ctx, before)
	})

	if edit.changes.Venues == nil && edit.changes.SwitchesToFreelance(before) {
		pruned := s.employments.PruneForFreelance(ctx, edit.current)
		if len(pruned) > 0 {
			undo.add("reopen pruned associations", func(ctx context.Context) error {
				return s.employments.reopen(ctx, pruned)
			})
		}
	}

	if edit.changes.Venues != nil {
		rec, err := s.employments.Reconcile(ctx, before.ID, edit.changes.Venues.VenueIDs, actor.ID, note)
		undo.add("undo reconcile", func(ctx context.Context) error {
			return s.employments.Undo(ctx, rec)
		})
		if err != nil {
			undo.rollback(ctx, err)
			return domain.Worker{}, err
		}
	}

	s.log.InfoContext(ctx, "worker updated",
		"worker_id", updated.ID,
		"actor_id", actor.ID,
		"status", updated.Status,
		"venues_changed", edit.changes.Venues != nil,
	)
	return updated, nil
}

// planVenueEdit validates changes against the stored venue without writing.
func (s *Service) planVenueEdit(ctx context.Context, venue domain.Venue, changes domain.VenueChanges) (venueEdit, error) {
	if changes.IsEmpty() {
		return venueEdit{}, &domain.ValidationError{Reason: "no changes provided"}
	}
	if err := s.check(changes); err != nil {
		return venueEdit{}, err
	}
	if changes.Category != nil && !domain.IsKnownCategory(*changes.Category) {
		return venueEdit{}, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", *changes.Category)}
	}
	if venue.Status == domain.StatusRemoved {
		return venueEdit{}, &domain.TransitionError{Event: "edit", Current: string(venue.Status)}
	}

	leavesNightclub := changes.Category != nil &&
		venue.Category == domain.CategoryNightclub &&
		*changes.Category != domain.CategoryNightclub
	if leavesNightclub {
		if err := s.checkNoFreelancers(ctx, venue); err != nil {
			return venueEdit{}, err
		}
	}

	return venueEdit{before: venue, after: changes.ApplyTo(venue), changes: changes}, nil
}

// checkNoFreelancers refuses a recategorisation that would leave a
// freelance worker attached to a non-nightclub venue.
func (s *Service) checkNoFreelancers(ctx context.Context, venue domain.Venue) error {
	current, err := s.assocs.ListCurrentByVenue(ctx, venue.ID)
	if err != nil {
		return persistence("loading venue associations", err)
	}

	for _, assoc := range current {
		worker, err := s.workers.GetByID(ctx, assoc.WorkerID)
		if errors.Is(err, domain.ErrWorkerNotFound) {
			continue
		}
		if err != nil {
			return persistence("loading worker", err)
		}
		if worker.IsFreelance {
			return &domain.BusinessRuleError{
				WorkerID: worker.ID,
				VenueID:  venue.ID,
				Reason: fmt.Sprintf("freelance worker %q is currently at %q, which must stay a %s",
					worker.Name, venue.Name, domain.CategoryNightclub),
			}
		}
	}
	return nil
}

func (s *Service) applyVenueEdit(ctx context.Context, edit venueEdit, resubmit bool, undo *compensations) (domain.Venue, error) {
	updated := edit.after
	if resubmit && updated.Status != domain.StatusPending {
		next, err := s.lifecycle.Apply(ctx, updated.Status, domain.EventResubmit)
		if err != nil {
			return domain.Venue{}, err
		}
		updated.Status = next
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.venues.Update(ctx, updated); err != nil {
		return domain.Venue{}, persistence("updating venue", err)
	}
	before := edit.before
	undo.add("restore venue", func(ctx context.Context) error {
		return s.venues.Update(ctx, before)
	})

	s.log.InfoContext(ctx, "venue updated",
		"venue_id", updated.ID,
		"status", updated.Status,
	)
	return updated, nil
}

// matchChanges checks that a proposal carries changes for its own item type only.
func matchChanges(itemType domain.ItemType, changes domain.ProposedChanges) error {
	switch itemType {
	case domain.ItemWorker:
		if changes.Worker == nil || changes.Venue != nil {
			return &domain.ValidationError{Field: "proposed_changes", Reason: "worker proposals must carry worker changes only"}
		}
	case domain.ItemVenue:
		if changes.Venue == nil || changes.Worker != nil {
			return &domain.ValidationError{Field: "proposed_changes", Reason: "venue proposals must carry venue changes only"}
		}
	default:
		return &domain.ValidationError{Field: "item_type", Reason: fmt.Sprintf("unknown item type %q", itemType)}
	}
	return nil
}

// recordAudit stores an already reviewed proposal. The change it describes
// has been applied, so a failure is logged rather than returned.
func (s *Service) recordAudit(ctx context.Context, proposal domain.Proposal) {
	if err := s.proposals.Create(ctx, proposal); err != nil {
		s.log.ErrorContext(ctx, "recording audit proposal failed",
			"proposal_id", proposal.ID,
			"item_type", proposal.ItemType,
			"item_id", proposal.ItemID,
			"error", err,
		)
	}
}

func (s *Service) recordDirectEdit(ctx context.Context, actor domain.Actor, itemType domain.ItemType, itemID string, changes domain.ProposedChanges, current json.RawMessage) {
	id, err := newID()
	if err != nil {
		s.log.ErrorContext(ctx, "generating proposal id failed", "error", err)
		return
	}

	proposal := domain.NewProposal(id, domain.KindEdit, itemType, itemID, changes, current, actor.ID)
	if actor.IsPrivileged() {
		proposal.MarkReviewed(domain.ReviewApproved, actor.ID, domain.AutoApprovalNote)
	} else {
		proposal.MarkReviewed(domain.ReviewApproved, "", domain.OwnerEditNote)
	}
	s.recordAudit(ctx, proposal)
}
