package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrQueueEntryNotFound = errors.New("moderation queue entry not found")
	ErrUnauthenticated    = errors.New("authentication required")
)

// Code is a stable, machine-readable error identifier exposed to API clients.
type Code string

const (
	CodeValidation    Code = "validation_failed"
	CodeBusinessRule  Code = "business_rule_violation"
	CodeConflict      Code = "conflict"
	CodeNotFound      Code = "not_found"
	CodeUnauthorized  Code = "unauthenticated"
	CodeForbidden     Code = "forbidden"
	CodeTransition    Code = "invalid_transition"
	CodePersistence   Code = "persistence_failure"
	CodeInternalError Code = "internal_error"
)

// ValidationError reports malformed input, caught before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// BusinessRuleError reports a freelance, category or cardinality violation.
type BusinessRuleError struct {
	WorkerID string
	VenueID  string
	Reason   string
}

func (e *BusinessRuleError) Error() string { return e.Reason }

// ConflictError reports a request that contradicts stored state, such as
// reviewing an already reviewed proposal.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// ErrAlreadyReviewed is the conflict returned when a review target is no longer pending.
var ErrAlreadyReviewed = &ConflictError{Reason: "already reviewed"}

// PersistenceError wraps a failed store call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthorizationError is returned when the actor lacks the role or permission for an action.
type AuthorizationError struct {
	ActorID string
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %q is not allowed to %s", e.ActorID, e.Action)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrProposalNotFound) ||
		errors.Is(err, ErrQueueEntryNotFound)
}

// CodeOf classifies err into its stable API code.
func CodeOf(err error) Code {
	var (
		valErr   *ValidationError
		ruleErr  *BusinessRuleError
		confErr  *ConflictError
		authErr  *AuthorizationError
		trErr    *TransitionError
		storeErr *PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthorized
	case errors.As(err, &authErr):
		return CodeForbidden
	case errors.As(err, &valErr):
		return CodeValidation
	case errors.As(err, &ruleErr):
		return CodeBusinessRule
	case errors.As(err, &confErr):
		return CodeConflict
	case errors.As(err, &trErr):
		return CodeTransition
	case errors.As(err, &storeErr):
		return CodePersistence
	}
	return CodeInternalError
}
