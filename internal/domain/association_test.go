package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/neomorfeo/venuedir/internal/domain"
)

func venue(id string, category domain.Category) domain.Venue {
	return domain.NewVenue(id, "Venue "+id, category, "u-1")
}

func TestCheckAssociations_Regular(t *testing.T) {
	cases := []struct {
		name    string
		venues  []domain.Venue
		wantErr bool
	}{
		{"none", nil, false},
		{"single bar", []domain.Venue{venue("v-1", "Bar")}, false},
		{"single nightclub", []domain.Venue{venue("v-1", domain.CategoryNightclub)}, false},
		{"two venues", []domain.Venue{venue("v-1", "Bar"), venue("v-2", "Bar")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.CheckAssociations("w-1", false, tc.venues)
			if tc.wantErr {
				var ruleErr *domain.BusinessRuleError
				if !errors.As(err, &ruleErr) {
					t.Fatalf("expected BusinessRuleError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckAssociations_FreelanceNightclubsOnly(t *testing.T) {
	ok := []domain.Venue{venue("v-1", domain.CategoryNightclub), venue("v-2", domain.CategoryNightclub)}
	if err := domain.CheckAssociations("w-1", true, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []domain.Venue{venue("v-1", domain.CategoryNightclub), venue("v-2", "Bar")}
	err := domain.CheckAssociations("w-1", true, bad)
	var ruleErr *domain.BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
	if ruleErr.VenueID != "v-2" {
		t.Errorf("VenueID = %q, want %q", ruleErr.VenueID, "v-2")
	}
	if !strings.Contains(ruleErr.Error(), "Venue v-2") {
		t.Errorf("reason %q does not name the offending venue", ruleErr.Error())
	}
}

func TestCheckAssociations_FreelanceEmptyIsAllowed(t *testing.T) {
	if err := domain.CheckAssociations("", true, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckAssociations_DuplicateVenue(t *testing.T) {
	v := venue("v-1", domain.CategoryNightclub)
	err := domain.CheckAssociations("w-1", true, []domain.Venue{v, v})
	var confErr *domain.ConflictError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestNewAssociation(t *testing.T) {
	a := domain.NewAssociation("a-1", "w-1", "v-1", "u-1", "hired")
	if !a.IsCurrent {
		t.Error("new association should be current")
	}
	if a.EndDate != nil {
		t.Error("new association should have no end date")
	}
	if a.StartDate.IsZero() {
		t.Error("StartDate should be set")
	}
	if a.Notes != "hired" || a.CreatedBy != "u-1" {
		t.Errorf("unexpected association %+v", a)
	}
}
