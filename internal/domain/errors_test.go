package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neomorfeo/venuedir/internal/domain"
)

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Event:   string(domain.EventResubmit),
		Current: string(domain.StatusRemoved),
	}
	want := `event "resubmit" is not valid from state "removed"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAuthorizationError_Error(t *testing.T) {
	err := &domain.AuthorizationError{ActorID: "u-1", Action: "approve proposals"}
	want := `actor "u-1" is not allowed to approve proposals`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("creating worker: %w", &domain.PersistenceError{Op: "insert worker", Err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.Code
	}{
		{"nil", nil, ""},
		{"worker not found", fmt.Errorf("loading: %w", domain.ErrWorkerNotFound), domain.CodeNotFound},
		{"proposal not found", domain.ErrProposalNotFound, domain.CodeNotFound},
		{"unauthenticated", domain.ErrUnauthenticated, domain.CodeUnauthorized},
		{"forbidden", &domain.AuthorizationError{ActorID: "u", Action: "x"}, domain.CodeForbidden},
		{"validation", &domain.ValidationError{Field: "name", Reason: "required"}, domain.CodeValidation},
		{"business rule", &domain.BusinessRuleError{Reason: "nope"}, domain.CodeBusinessRule},
		{"already reviewed", domain.ErrAlreadyReviewed, domain.CodeConflict},
		{"transition", &domain.TransitionError{Event: "approve", Current: "removed"}, domain.CodeTransition},
		{"persistence", &domain.PersistenceError{Op: "op", Err: errors.New("x")}, domain.CodePersistence},
		{"unknown", errors.New("boom"), domain.CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.CodeOf(tc.err); got != tc.want {
				t.Errorf("CodeOf() = %q, want %q", got, tc.want)
			}
		})
	}
}
