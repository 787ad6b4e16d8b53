package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/venuedir/internal/adapter/otel"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock repositories ---

type mockWorkers struct {
	workers map[string]domain.Worker
}

func newMockWorkers() *mockWorkers {
	return &mockWorkers{workers: make(map[string]domain.Worker)}
}

func (m *mockWorkers) Create(_ context.Context, w domain.Worker) error {
	m.workers[w.ID] = w
	return nil
}

func (m *mockWorkers) GetByID(_ context.Context, id string) (domain.Worker, error) {
	w, ok := m.workers[id]
	if !ok {
		return domain.Worker{}, domain.ErrWorkerNotFound
	}
	return w, nil
}

func (m *mockWorkers) List(_ context.Context, _ domain.WorkerFilter) ([]domain.Worker, error) {
	out := make([]domain.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		out = append(out, w)
	}
	return out, nil
}

func (m *mockWorkers) Update(_ context.Context, w domain.Worker) error {
	if _, ok := m.workers[w.ID]; !ok {
		return domain.ErrWorkerNotFound
	}
	m.workers[w.ID] = w
	return nil
}

func (m *mockWorkers) Delete(_ context.Context, id string) error {
	delete(m.workers, id)
	return nil
}

type mockAssociations struct {
	current []domain.Association
}

func (m *mockAssociations) Insert(_ context.Context, a domain.Association) error {
	m.current = append(m.current, a)
	return nil
}

func (m *mockAssociations) ListByWorker(_ context.Context, _ string) ([]domain.Association, error) {
	return m.current, nil
}

func (m *mockAssociations) ListCurrentByWorker(_ context.Context, _ string) ([]domain.Association, error) {
	return m.current, nil
}

func (m *mockAssociations) ListCurrentByVenue(_ context.Context, _ string) ([]domain.Association, error) {
	return m.current, nil
}

func (m *mockAssociations) End(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *mockAssociations) EndCurrent(_ context.Context, _ string, _ time.Time) ([]domain.Association, error) {
	ended := m.current
	m.current = nil
	return ended, nil
}

func (m *mockAssociations) Reopen(_ context.Context, _ string) error { return nil }

func (m *mockAssociations) Delete(_ context.Context, _ string) error { return nil }

type mockProposals struct{}

func (mockProposals) Create(context.Context, domain.Proposal) error { return nil }
func (mockProposals) GetByID(context.Context, string) (domain.Proposal, error) {
	return domain.Proposal{}, domain.ErrProposalNotFound
}
func (mockProposals) List(context.Context, domain.ProposalFilter) ([]domain.Proposal, error) {
	return nil, nil
}
func (mockProposals) Review(context.Context, domain.Proposal) error { return domain.ErrAlreadyReviewed }

// --- Tests ---

func TestTracingWorkers_Create_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingWorkers(newMockWorkers())

	worker := domain.NewWorker("w-1", "Ana", "user-1", "user-1")
	worker.IsFreelance = true
	if err := repo.Create(context.Background(), worker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "WorkerRepository.Create" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "WorkerRepository.Create")
	}

	assertAttribute(t, spans[0], "worker.id", "w-1")
	assertAttribute(t, spans[0], "worker.freelance", "true")
}

func TestTracingWorkers_GetByID_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingWorkers(newMockWorkers())

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}

	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTracingWorkers_List_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockWorkers()
	repo := adapter.NewTracingWorkers(inner)

	inner.workers["w-1"] = domain.NewWorker("w-1", "Ana", "user-1", "user-1")
	inner.workers["w-2"] = domain.NewWorker("w-2", "Bea", "user-1", "user-1")

	status := domain.StatusPending
	workers, err := repo.List(context.Background(), domain.WorkerFilter{Status: &status, Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workers) != 2 {
		t.Errorf("got %d workers, want 2", len(workers))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	assertAttribute(t, spans[0], "result.count", "2")
	assertAttribute(t, spans[0], "filter.status", "pending")
	assertAttribute(t, spans[0], "filter.limit", "50")
}

func TestTracingWorkers_Update_RecordsStatus(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockWorkers()
	repo := adapter.NewTracingWorkers(inner)

	worker := domain.NewWorker("w-1", "Ana", "user-1", "user-1")
	inner.workers["w-1"] = worker

	worker.Status = domain.StatusApproved
	if err := repo.Update(context.Background(), worker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "worker.status", "approved")
}

func TestTracingAssociations_EndCurrent_RecordsCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockAssociations{}
	repo := adapter.NewTracingAssociations(inner)

	ctx := context.Background()
	_ = repo.Insert(ctx, domain.NewAssociation("a-1", "w-1", "v-1", "user-1", ""))
	_ = repo.Insert(ctx, domain.NewAssociation("a-2", "w-1", "v-2", "user-1", ""))

	ended, err := repo.EndCurrent(ctx, "w-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ended) != 2 {
		t.Errorf("ended %d rows, want 2", len(ended))
	}

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	assertAttribute(t, spans[0], "venue.id", "v-1")
	if spans[2].Name != "AssociationRepository.EndCurrent" {
		t.Errorf("span name = %q, want %q", spans[2].Name, "AssociationRepository.EndCurrent")
	}
	assertAttribute(t, spans[2], "result.count", "2")
}

func TestTracingProposals_Review_RecordsConflict(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingProposals(mockProposals{})

	p := domain.NewProposal("p-1", domain.KindEdit, domain.ItemWorker, "w-1", domain.ProposedChanges{}, nil, "user-1")
	p.MarkReviewed(domain.ReviewApproved, "admin-1", "")

	if err := repo.Review(context.Background(), p); !errors.Is(err, domain.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	assertAttribute(t, spans[0], "proposal.status", "approved")
	assertAttribute(t, spans[0], "item.id", "w-1")
}

type mockAccess struct {
	owners map[string]domain.VenuePermissions
}

func (m mockAccess) VenuePermissions(_ context.Context, actorID, venueID string) (domain.VenuePermissions, bool, error) {
	p, ok := m.owners[venueID+"/"+actorID]
	return p, ok, nil
}

func (m mockAccess) GrantVenue(_ context.Context, venueID, userID string, perms domain.VenuePermissions) error {
	m.owners[venueID+"/"+userID] = perms
	return nil
}

func TestTracingAccess_RecordsOwnership(t *testing.T) {
	exporter := setupTestTracer(t)
	access := adapter.NewTracingAccess(mockAccess{owners: map[string]domain.VenuePermissions{}})
	ctx := context.Background()

	if err := access.GrantVenue(ctx, "v-1", "user-2", domain.FullVenuePermissions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, owner, err := access.VenuePermissions(ctx, "user-2", "v-1")
	if err != nil || !owner {
		t.Fatalf("VenuePermissions = %v, %v; want owner", owner, err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "AccessChecker.GrantVenue" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "AccessChecker.GrantVenue")
	}
	assertAttribute(t, spans[0], "user.id", "user-2")
	assertAttribute(t, spans[0], "perm.pricing", "true")
	assertAttribute(t, spans[1], "venue.id", "v-1")
	assertAttribute(t, spans[1], "venue.owner", "true")
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
