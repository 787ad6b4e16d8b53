package domain

// Status represents the moderation lifecycle state of a worker or venue.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusRemoved  Status = "removed"
)

// Event represents an action that triggers a lifecycle transition.
type Event string

const (
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
	EventResubmit Event = "resubmit"
	EventRemove   Event = "remove"
)

// Valid reports whether e is a known lifecycle event.
func (e Event) Valid() bool {
	switch e {
	case EventApprove, EventReject, EventResubmit, EventRemove:
		return true
	}
	return false
}

// Transition defines a valid state change: an event moves an item from Src to Dst.
type Transition[S ~string, E ~string] struct {
	Event E
	Src   S
	Dst   S
}

// LifecycleTransitions defines all valid state changes of a worker or venue.
// This is domain knowledge consumed by the FSM adapter.
var LifecycleTransitions = []Transition[Status, Event]{
	{Event: EventApprove, Src: StatusPending, Dst: StatusApproved},
	{Event: EventReject, Src: StatusPending, Dst: StatusRejected},
	{Event: EventResubmit, Src: StatusApproved, Dst: StatusPending},
	{Event: EventResubmit, Src: StatusRejected, Dst: StatusPending},
	{Event: EventRemove, Src: StatusPending, Dst: StatusRemoved},
	{Event: EventRemove, Src: StatusApproved, Dst: StatusRemoved},
	{Event: EventRemove, Src: StatusRejected, Dst: StatusRemoved},
}

// ReviewStatus is the state of a proposal or moderation queue entry.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Decision is a moderator's verdict on a proposal or queue entry.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// ReviewTransitions defines the review workflow. Both outcomes are terminal.
var ReviewTransitions = []Transition[ReviewStatus, Decision]{
	{Event: DecisionApprove, Src: ReviewPending, Dst: ReviewApproved},
	{Event: DecisionReject, Src: ReviewPending, Dst: ReviewRejected},
}

// LifecycleEvent maps a review decision onto the entity lifecycle event it implies.
func (d Decision) LifecycleEvent() Event {
	if d == DecisionApprove {
		return EventApprove
	}
	return EventReject
}
