package domain

import (
	"encoding/json"
	"time"
)

// ItemType names the kind of entity a proposal or queue entry targets.
type ItemType string

const (
	ItemWorker ItemType = "worker"
	ItemVenue  ItemType = "venue"
)

// ProposalKind distinguishes creation audit records from edit proposals.
type ProposalKind string

const (
	KindCreate ProposalKind = "create"
	KindEdit   ProposalKind = "edit"
)

// AutoApprovalNote is stored on proposals applied directly by a privileged actor.
const AutoApprovalNote = "Auto-approved: submitted by a privileged user"

// OwnerEditNote is stored on the audit record of a direct owner edit.
const OwnerEditNote = "Applied directly by owner; item returned to pending review"

// ProposedChanges carries the typed update for exactly one item type.
type ProposedChanges struct {
	Worker *WorkerChanges `json:"worker,omitempty"`
	Venue  *VenueChanges  `json:"venue,omitempty"`
}

// Proposal is the audit and review record of a create or edit attempt.
type Proposal struct {
	ID             string
	Kind           ProposalKind
	ItemType       ItemType
	ItemID         string
	Changes        ProposedChanges
	CurrentValues  json.RawMessage
	ProposedBy     string
	Status         ReviewStatus
	ModeratorID    string
	ModeratorNotes string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
}

// NewProposal creates a pending proposal.
func NewProposal(id string, kind ProposalKind, itemType ItemType, itemID string, changes ProposedChanges, current json.RawMessage, proposedBy string) Proposal {
	return Proposal{
		ID:            id,
		Kind:          kind,
		ItemType:      itemType,
		ItemID:        itemID,
		Changes:       changes,
		CurrentValues: current,
		ProposedBy:    proposedBy,
		Status:        ReviewPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// MarkReviewed records the moderator's verdict on the proposal.
func (p *Proposal) MarkReviewed(status ReviewStatus, moderatorID, notes string) {
	now := time.Now().UTC()
	p.Status = status
	p.ModeratorID = moderatorID
	p.ModeratorNotes = notes
	p.ReviewedAt = &now
}

// ProposalFilter holds optional criteria for listing proposals.
type ProposalFilter struct {
	Status     *ReviewStatus
	Kind       *ProposalKind
	ItemType   *ItemType
	ItemID     string
	ProposedBy string
	Limit      int
	Offset     int
}

// QueueEntry is a brand-new entity awaiting its first moderation decision.
type QueueEntry struct {
	ID          string
	ItemType    ItemType
	ItemID      string
	SubmittedBy string
	Status      ReviewStatus
	ReviewedBy  string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
}

// NewQueueEntry creates a pending queue entry.
func NewQueueEntry(id string, itemType ItemType, itemID, submittedBy string) QueueEntry {
	return QueueEntry{
		ID:          id,
		ItemType:    itemType,
		ItemID:      itemID,
		SubmittedBy: submittedBy,
		Status:      ReviewPending,
		CreatedAt:   time.Now().UTC(),
	}
}
