package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/venuedir/internal/domain"
)

const tracerName = "github.com/neomorfeo/venuedir/internal/adapter/otel"

// finish records err on the span, if any, and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func limits(limit, offset int) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.Int("filter.limit", limit),
		attribute.Int("filter.offset", offset),
	)
}

// --- Workers ---

// TracingWorkers wraps a domain.WorkerRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingWorkers struct {
	next   domain.WorkerRepository
	tracer trace.Tracer
}

var _ domain.WorkerRepository = (*TracingWorkers)(nil)

// NewTracingWorkers creates a tracing decorator around the given repository.
func NewTracingWorkers(next domain.WorkerRepository) *TracingWorkers {
	return &TracingWorkers{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingWorkers) Create(ctx context.Context, w domain.Worker) (err error) {
	ctx, span := r.tracer.Start(ctx, "WorkerRepository.Create",
		trace.WithAttributes(
			attribute.String("worker.id", w.ID),
			attribute.Bool("worker.freelance", w.IsFreelance),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Create(ctx, w)
}

func (r *TracingWorkers) GetByID(ctx context.Context, id string) (w domain.Worker, err error) {
	ctx, span := r.tracer.Start(ctx, "WorkerRepository.GetByID",
		trace.WithAttributes(attribute.String("worker.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.GetByID(ctx, id)
}

func (r *TracingWorkers) List(ctx context.Context, filter domain.WorkerFilter) (ws []domain.Worker, err error) {
	ctx, span := r.tracer.Start(ctx, "WorkerRepository.List", limits(filter.Limit, filter.Offset))
	defer func() { finish(span, err) }()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	ws, err = r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(ws)))
	}
	return ws, err
}

func (r *TracingWorkers) Update(ctx context.Context, w domain.Worker) (err error) {
	ctx, span := r.tracer.Start(ctx, "WorkerRepository.Update",
		trace.WithAttributes(
			attribute.String("worker.id", w.ID),
			attribute.String("worker.status", string(w.Status)),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Update(ctx, w)
}

func (r *TracingWorkers) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "WorkerRepository.Delete",
		trace.WithAttributes(attribute.String("worker.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.Delete(ctx, id)
}

// --- Venues ---

// TracingVenues wraps a domain.VenueRepository with OpenTelemetry tracing.
type TracingVenues struct {
	next   domain.VenueRepository
	tracer trace.Tracer
}

var _ domain.VenueRepository = (*TracingVenues)(nil)

// NewTracingVenues creates a tracing decorator around the given repository.
func NewTracingVenues(next domain.VenueRepository) *TracingVenues {
	return &TracingVenues{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingVenues) Create(ctx context.Context, v domain.Venue) (err error) {
	ctx, span := r.tracer.Start(ctx, "VenueRepository.Create",
		trace.WithAttributes(
			attribute.String("venue.id", v.ID),
			attribute.String("venue.category", string(v.Category)),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Create(ctx, v)
}

func (r *TracingVenues) GetByID(ctx context.Context, id string) (v domain.Venue, err error) {
	ctx, span := r.tracer.Start(ctx, "VenueRepository.GetByID",
		trace.WithAttributes(attribute.String("venue.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.GetByID(ctx, id)
}

func (r *TracingVenues) List(ctx context.Context, filter domain.VenueFilter) (vs []domain.Venue, err error) {
	ctx, span := r.tracer.Start(ctx, "VenueRepository.List", limits(filter.Limit, filter.Offset))
	defer func() { finish(span, err) }()

	if filter.Category != nil {
		span.SetAttributes(attribute.String("filter.category", string(*filter.Category)))
	}

	vs, err = r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(vs)))
	}
	return vs, err
}

func (r *TracingVenues) Update(ctx context.Context, v domain.Venue) (err error) {
	ctx, span := r.tracer.Start(ctx, "VenueRepository.Update",
		trace.WithAttributes(
			attribute.String("venue.id", v.ID),
			attribute.String("venue.status", string(v.Status)),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Update(ctx, v)
}

func (r *TracingVenues) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "VenueRepository.Delete",
		trace.WithAttributes(attribute.String("venue.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.Delete(ctx, id)
}

// --- Associations ---

// TracingAssociations wraps a domain.AssociationRepository with OpenTelemetry tracing.
type TracingAssociations struct {
	next   domain.AssociationRepository
	tracer trace.Tracer
}

var _ domain.AssociationRepository = (*TracingAssociations)(nil)

// NewTracingAssociations creates a tracing decorator around the given repository.
func NewTracingAssociations(next domain.AssociationRepository) *TracingAssociations {
	return &TracingAssociations{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingAssociations) Insert(ctx context.Context, a domain.Association) (err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.Insert",
		trace.WithAttributes(
			attribute.String("association.id", a.ID),
			attribute.String("worker.id", a.WorkerID),
			attribute.String("venue.id", a.VenueID),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Insert(ctx, a)
}

func (r *TracingAssociations) ListByWorker(ctx context.Context, workerID string) (out []domain.Association, err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.ListByWorker",
		trace.WithAttributes(attribute.String("worker.id", workerID)),
	)
	defer func() { finish(span, err) }()
	return r.next.ListByWorker(ctx, workerID)
}

func (r *TracingAssociations) ListCurrentByWorker(ctx context.Context, workerID string) (out []domain.Association, err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.ListCurrentByWorker",
		trace.WithAttributes(attribute.String("worker.id", workerID)),
	)
	defer func() { finish(span, err) }()

	out, err = r.next.ListCurrentByWorker(ctx, workerID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(out)))
	}
	return out, err
}

func (r *TracingAssociations) ListCurrentByVenue(ctx context.Context, venueID string) (out []domain.Association, err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.ListCurrentByVenue",
		trace.WithAttributes(attribute.String("venue.id", venueID)),
	)
	defer func() { finish(span, err) }()

	out, err = r.next.ListCurrentByVenue(ctx, venueID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(out)))
	}
	return out, err
}

func (r *TracingAssociations) End(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.End",
		trace.WithAttributes(attribute.String("association.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.End(ctx, id, at)
}

func (r *TracingAssociations) EndCurrent(ctx context.Context, workerID string, at time.Time) (out []domain.Association, err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.EndCurrent",
		trace.WithAttributes(attribute.String("worker.id", workerID)),
	)
	defer func() { finish(span, err) }()

	out, err = r.next.EndCurrent(ctx, workerID, at)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(out)))
	}
	return out, err
}

func (r *TracingAssociations) Reopen(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.Reopen",
		trace.WithAttributes(attribute.String("association.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.Reopen(ctx, id)
}

func (r *TracingAssociations) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "AssociationRepository.Delete",
		trace.WithAttributes(attribute.String("association.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.Delete(ctx, id)
}
