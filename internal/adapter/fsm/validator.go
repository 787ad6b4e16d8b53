package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// Compile-time checks: both lifecycles are served by Validator.
var (
	_ domain.TransitionValidator[domain.Status, domain.Event]           = (*Validator[domain.Status, domain.Event])(nil)
	_ domain.TransitionValidator[domain.ReviewStatus, domain.Decision] = (*Validator[domain.ReviewStatus, domain.Decision])(nil)
)

// buildEvents converts a domain transition table into looplab/fsm EventDesc
// format. It consolidates transitions with the same event+destination into a
// single EventDesc with multiple source states (e.g., EventRemove from
// "pending", "approved" and "rejected" all go to "removed").
func buildEvents[S ~string, E ~string](transitions []domain.Transition[S, E]) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per Apply call, initialized with
// the item's current state. This is necessary because looplab/fsm is
// stateful (it tracks the current state internally).
type Validator[S ~string, E ~string] struct {
	events []loopfsm.EventDesc
}

// New creates an FSM-backed validator for the given transition table.
func New[S ~string, E ~string](transitions []domain.Transition[S, E]) *Validator[S, E] {
	return &Validator[S, E]{events: buildEvents(transitions)}
}

// NewLifecycle creates the validator for worker and venue status changes.
func NewLifecycle() *Validator[domain.Status, domain.Event] {
	return New(domain.LifecycleTransitions)
}

// NewReview creates the validator for proposal and queue entry reviews.
func NewReview() *Validator[domain.ReviewStatus, domain.Decision] {
	return New(domain.ReviewTransitions)
}

// Apply checks if the given event is valid from the current state and
// returns the destination state. Returns a domain.TransitionError if
// the transition is not allowed.
func (v *Validator[S, E]) Apply(ctx context.Context, current S, event E) (S, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   string(event),
				Current: string(current),
			}
		}
		return "", err
	}

	return S(machine.Current()), nil
}
