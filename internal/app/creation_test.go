package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

func TestCreateWorker_RegularWithOneVenue(t *testing.T) {
	h := newHarness(t)
	h.addVenue("bar-1", "Bar")

	worker, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:     "  Ana  ",
		VenueIDs: []string{"bar-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana", worker.Name)
	assert.Equal(t, domain.StatusPending, worker.Status)
	assert.Equal(t, member.ID, worker.OwnerID)
	assert.NotEmpty(t, worker.ID)

	assert.Contains(t, h.workers.rows, worker.ID)
	assert.Equal(t, []string{"bar-1"}, h.assocs.current(worker.ID))

	entries := h.queue.forItem(worker.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReviewPending, entries[0].Status)
	assert.Equal(t, member.ID, entries[0].SubmittedBy)

	created := h.proposals.byKind(domain.KindCreate, worker.ID)
	require.Len(t, created, 1)
	assert.Equal(t, domain.ReviewPending, created[0].Status)

	require.Len(t, h.points.events, 1)
	assert.Equal(t, domain.PointsWorkerCreated, h.points.events[0].Kind)
	assert.Equal(t, []domain.NotificationKind{domain.NotifyItemSubmitted}, h.notifier.kinds())
}

func TestCreateWorker_RegularWithTwoVenues(t *testing.T) {
	h := newHarness(t)
	h.addVenue("bar-1", "Bar")
	h.addVenue("bar-2", "Bar")

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:     "Ana",
		VenueIDs: []string{"bar-1", "bar-2"},
	})

	var ruleErr *domain.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Empty(t, h.workers.rows, "no write may happen before validation passes")
	assert.Empty(t, h.assocs.rows)
	assert.Empty(t, h.queue.rows)
}

func TestCreateWorker_FreelanceAtNonNightclub(t *testing.T) {
	h := newHarness(t)
	h.addVenue("club-1", domain.CategoryNightclub)
	bar := h.addVenue("bar-1", "Bar")

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:        "Ana",
		IsFreelance: true,
		VenueIDs:    []string{"club-1", "bar-1"},
	})

	var ruleErr *domain.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "bar-1", ruleErr.VenueID)
	assert.Contains(t, ruleErr.Error(), bar.Name)
	assert.Empty(t, h.workers.rows)
}

func TestCreateWorker_FreelanceAtSeveralNightclubs(t *testing.T) {
	h := newHarness(t)
	h.addVenue("club-1", domain.CategoryNightclub)
	h.addVenue("club-2", domain.CategoryNightclub)

	worker, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:        "Ana",
		IsFreelance: true,
		VenueIDs:    []string{"club-1", "club-2"},
	})
	require.NoError(t, err)

	assert.True(t, worker.IsFreelance)
	assert.ElementsMatch(t, []string{"club-1", "club-2"}, h.assocs.current(worker.ID))
}

func TestCreateWorker_InputErrors(t *testing.T) {
	cases := []struct {
		name string
		cmd  app.CreateWorkerCommand
		want domain.Code
	}{
		{"empty name", app.CreateWorkerCommand{Name: "   "}, domain.CodeValidation},
		{"bad photo url", app.CreateWorkerCommand{Name: "Ana", PhotoURL: "not a url"}, domain.CodeValidation},
		{"unknown venue", app.CreateWorkerCommand{Name: "Ana", VenueIDs: []string{"nope"}}, domain.CodeValidation},
		{"empty venue id", app.CreateWorkerCommand{Name: "Ana", VenueIDs: []string{""}}, domain.CodeValidation},
		{
			"duplicate venue",
			app.CreateWorkerCommand{Name: "Ana", IsFreelance: true, VenueIDs: []string{"club-1", "club-1"}},
			domain.CodeConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.addVenue("club-1", domain.CategoryNightclub)

			_, err := h.svc.CreateWorker(context.Background(), member, tc.cmd)
			require.Error(t, err)
			assert.Equal(t, tc.want, domain.CodeOf(err))
			assert.Empty(t, h.workers.rows)
		})
	}
}

func TestCreateWorker_RemovedVenue(t *testing.T) {
	h := newHarness(t)
	v := h.addVenue("bar-1", "Bar")
	v.Status = domain.StatusRemoved
	h.venues.rows[v.ID] = v

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:     "Ana",
		VenueIDs: []string{"bar-1"},
	})

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "venue_ids", valErr.Field)
}

func TestCreateWorker_RollsBackWhenAssociationInsertFails(t *testing.T) {
	h := newHarness(t)
	h.addVenue("club-1", domain.CategoryNightclub)
	h.addVenue("club-2", domain.CategoryNightclub)
	h.assocs.failInsertAt = 2

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:        "Ana",
		IsFreelance: true,
		VenueIDs:    []string{"club-1", "club-2"},
	})

	var storeErr *domain.PersistenceError
	require.ErrorAs(t, err, &storeErr)
	require.ErrorIs(t, err, errStore)

	assert.Empty(t, h.workers.rows, "worker must be deleted")
	assert.Empty(t, h.assocs.rows, "first association must be deleted")
	assert.Empty(t, h.queue.rows)
	assert.Empty(t, h.proposals.rows)
	assert.Empty(t, h.points.events)
	assert.Empty(t, h.notifier.sent)
}

func TestCreateWorker_RollsBackWhenEnqueueFails(t *testing.T) {
	h := newHarness(t)
	h.addVenue("bar-1", "Bar")
	h.queue.fail["enqueue"] = errStore

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{
		Name:     "Ana",
		VenueIDs: []string{"bar-1"},
	})

	require.ErrorIs(t, err, errStore)
	assert.Empty(t, h.workers.rows)
	assert.Empty(t, h.assocs.rows)
}

func TestCreateWorker_CompensationFailureKeepsOriginalError(t *testing.T) {
	h := newHarness(t)
	enqueueErr := errors.New("queue is full")
	h.queue.fail["enqueue"] = enqueueErr
	h.workers.fail["delete"] = errStore

	_, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{Name: "Ana"})

	require.ErrorIs(t, err, enqueueErr)
	assert.NotErrorIs(t, err, errStore)
	assert.Len(t, h.workers.rows, 1, "a failed compensation leaves the row behind")
}

func TestCreateWorker_CompensationRunsOnCancelledContext(t *testing.T) {
	h := newHarness(t)
	h.addVenue("bar-1", "Bar")
	h.queue.fail["enqueue"] = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.CreateWorker(ctx, member, app.CreateWorkerCommand{
		Name:     "Ana",
		VenueIDs: []string{"bar-1"},
	})

	require.Error(t, err)
	assert.Empty(t, h.workers.rows)
	assert.Empty(t, h.assocs.rows)
}

func TestCreateWorker_AdvisoryFailuresDoNotFail(t *testing.T) {
	h := newHarness(t)
	h.proposals.fail["create"] = errStore
	h.notifier.err = errStore
	h.points.err = errStore

	worker, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{Name: "Ana"})
	require.NoError(t, err)

	assert.Contains(t, h.workers.rows, worker.ID)
	assert.Len(t, h.queue.forItem(worker.ID), 1)
}

func TestCreateWorker_OwnerOverride(t *testing.T) {
	h := newHarness(t)

	own, err := h.svc.CreateWorker(context.Background(), member, app.CreateWorkerCommand{Name: "Ana", OwnerID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, member.ID, own.OwnerID, "ordinary actors always own what they create")

	assigned, err := h.svc.CreateWorker(context.Background(), admin, app.CreateWorkerCommand{Name: "Bea", OwnerID: "owner-9"})
	require.NoError(t, err)
	assert.Equal(t, "owner-9", assigned.OwnerID)
	assert.Equal(t, admin.ID, assigned.CreatedBy)
}

func TestCreateWorker_Unauthenticated(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateWorker(context.Background(), domain.Actor{}, app.CreateWorkerCommand{Name: "Ana"})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCreateVenue_Success(t *testing.T) {
	h := newHarness(t)

	venue, err := h.svc.CreateVenue(context.Background(), member, app.CreateVenueCommand{
		Name:       "Velvet",
		Category:   domain.CategoryNightclub,
		City:       "Lisbon",
		PriceLevel: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, venue.Status)
	assert.Equal(t, 3, venue.PriceLevel)
	assert.Len(t, h.queue.forItem(venue.ID), 1)
	assert.Len(t, h.proposals.byKind(domain.KindCreate, venue.ID), 1)
	assert.Empty(t, h.points.events, "venues earn no points")
}

func TestCreateVenue_UnknownCategory(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateVenue(context.Background(), member, app.CreateVenueCommand{Name: "Velvet", Category: "Casino"})

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "category", valErr.Field)
	assert.Empty(t, h.venues.rows)
}

func TestCreateVenue_PriceLevelOutOfRange(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateVenue(context.Background(), member, app.CreateVenueCommand{
		Name: "Velvet", Category: "Bar", PriceLevel: 7,
	})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestCreateVenue_RollsBackWhenEnqueueFails(t *testing.T) {
	h := newHarness(t)
	h.queue.fail["enqueue"] = errStore

	_, err := h.svc.CreateVenue(context.Background(), member, app.CreateVenueCommand{Name: "Velvet", Category: "Bar"})

	require.ErrorIs(t, err, errStore)
	assert.Empty(t, h.venues.rows)
}
