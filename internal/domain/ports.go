package domain

import (
	"context"
	"time"
)

// WorkerRepository defines the persistence contract for workers.
type WorkerRepository interface {
	Create(ctx context.Context, worker Worker) error
	GetByID(ctx context.Context, id string) (Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]Worker, error)
	Update(ctx context.Context, worker Worker) error
	Delete(ctx context.Context, id string) error
}

// VenueRepository defines the persistence contract for venues.
type VenueRepository interface {
	Create(ctx context.Context, venue Venue) error
	GetByID(ctx context.Context, id string) (Venue, error)
	List(ctx context.Context, filter VenueFilter) ([]Venue, error)
	Update(ctx context.Context, venue Venue) error
	Delete(ctx context.Context, id string) error
}

// AssociationRepository defines the persistence contract for employment
// history rows. Every method is a single independent store call.
type AssociationRepository interface {
	Insert(ctx context.Context, assoc Association) error
	ListByWorker(ctx context.Context, workerID string) ([]Association, error)
	ListCurrentByWorker(ctx context.Context, workerID string) ([]Association, error)
	ListCurrentByVenue(ctx context.Context, venueID string) ([]Association, error)
	// End marks one row as no longer current. Ending an already ended row is a no-op.
	End(ctx context.Context, id string, at time.Time) error
	// EndCurrent ends every current row of the worker and returns the rows it ended.
	EndCurrent(ctx context.Context, workerID string, at time.Time) ([]Association, error)
	// Reopen marks a previously ended row as current again.
	Reopen(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ProposalRepository defines the persistence contract for edit proposals.
type ProposalRepository interface {
	Create(ctx context.Context, proposal Proposal) error
	GetByID(ctx context.Context, id string) (Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]Proposal, error)
	// Review stores the verdict only if the proposal is still pending and
	// returns ErrAlreadyReviewed otherwise.
	Review(ctx context.Context, proposal Proposal) error
}

// QueueRepository defines the persistence contract for the moderation queue.
type QueueRepository interface {
	Enqueue(ctx context.Context, entry QueueEntry) error
	GetByID(ctx context.Context, id string) (QueueEntry, error)
	List(ctx context.Context, status *ReviewStatus) ([]QueueEntry, error)
	// Resolve stores the verdict only if the entry is still pending and
	// returns ErrAlreadyReviewed otherwise.
	Resolve(ctx context.Context, entry QueueEntry) error
	Delete(ctx context.Context, id string) error
}

// AccessChecker answers venue ownership questions for the identity collaborator.
type AccessChecker interface {
	// VenuePermissions reports whether actorID owns venueID and, if so, what it may edit.
	VenuePermissions(ctx context.Context, actorID, venueID string) (VenuePermissions, bool, error)
	GrantVenue(ctx context.Context, venueID, userID string, perms VenuePermissions) error
}

// TransitionValidator checks state changes of one lifecycle.
type TransitionValidator[S ~string, E ~string] interface {
	Apply(ctx context.Context, current S, event E) (S, error)
}

// NotificationKind names a moderation notification.
type NotificationKind string

const (
	NotifyProposalSubmitted NotificationKind = "proposal.submitted"
	NotifyProposalApproved  NotificationKind = "proposal.approved"
	NotifyProposalRejected  NotificationKind = "proposal.rejected"
	NotifyItemSubmitted     NotificationKind = "item.submitted"
	NotifyItemReviewed      NotificationKind = "item.reviewed"
)

// Notification is a fire-and-forget message about a moderation step.
type Notification struct {
	Kind        NotificationKind
	ItemType    ItemType
	ItemID      string
	ProposalID  string
	ActorID     string
	RecipientID string
	Status      string
}

// Notifier delivers moderation notifications. Failures never block the workflow.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// PointsKind names an action credited by the points collaborator.
type PointsKind string

const (
	PointsWorkerCreated PointsKind = "worker.created"
	PointsWorkerUpdated PointsKind = "worker.updated"
)

// PointsEvent informs downstream credit accounting of a successful change.
type PointsEvent struct {
	Kind     PointsKind
	WorkerID string
	ActorID  string
}

// PointsRecorder accepts points events. Failures never roll back the workflow.
type PointsRecorder interface {
	Record(ctx context.Context, event PointsEvent) error
}
