package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Proposals ---

// TracingProposals wraps a domain.ProposalRepository with OpenTelemetry tracing.
type TracingProposals struct {
	next   domain.ProposalRepository
	tracer trace.Tracer
}

var _ domain.ProposalRepository = (*TracingProposals)(nil)

// NewTracingProposals creates a tracing decorator around the given repository.
func NewTracingProposals(next domain.ProposalRepository) *TracingProposals {
	return &TracingProposals{next: next, tracer: otel.Tracer(tracerName)}
}

func proposalAttrs(p domain.Proposal) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("proposal.id", p.ID),
		attribute.String("proposal.kind", string(p.Kind)),
		attribute.String("proposal.status", string(p.Status)),
		attribute.String("item.type", string(p.ItemType)),
		attribute.String("item.id", p.ItemID),
	)
}

func (r *TracingProposals) Create(ctx context.Context, p domain.Proposal) (err error) {
	ctx, span := r.tracer.Start(ctx, "ProposalRepository.Create", proposalAttrs(p))
	defer func() { finish(span, err) }()
	return r.next.Create(ctx, p)
}

func (r *TracingProposals) GetByID(ctx context.Context, id string) (p domain.Proposal, err error) {
	ctx, span := r.tracer.Start(ctx, "ProposalRepository.GetByID",
		trace.WithAttributes(attribute.String("proposal.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.GetByID(ctx, id)
}

func (r *TracingProposals) List(ctx context.Context, filter domain.ProposalFilter) (ps []domain.Proposal, err error) {
	ctx, span := r.tracer.Start(ctx, "ProposalRepository.List", limits(filter.Limit, filter.Offset))
	defer func() { finish(span, err) }()

	ps, err = r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(ps)))
	}
	return ps, err
}

func (r *TracingProposals) Review(ctx context.Context, p domain.Proposal) (err error) {
	ctx, span := r.tracer.Start(ctx, "ProposalRepository.Review", proposalAttrs(p))
	defer func() { finish(span, err) }()
	return r.next.Review(ctx, p)
}

// --- Queue ---

// TracingQueue wraps a domain.QueueRepository with OpenTelemetry tracing.
type TracingQueue struct {
	next   domain.QueueRepository
	tracer trace.Tracer
}

var _ domain.QueueRepository = (*TracingQueue)(nil)

// NewTracingQueue creates a tracing decorator around the given repository.
func NewTracingQueue(next domain.QueueRepository) *TracingQueue {
	return &TracingQueue{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingQueue) Enqueue(ctx context.Context, e domain.QueueEntry) (err error) {
	ctx, span := r.tracer.Start(ctx, "QueueRepository.Enqueue",
		trace.WithAttributes(
			attribute.String("queue.id", e.ID),
			attribute.String("item.type", string(e.ItemType)),
			attribute.String("item.id", e.ItemID),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Enqueue(ctx, e)
}

func (r *TracingQueue) GetByID(ctx context.Context, id string) (e domain.QueueEntry, err error) {
	ctx, span := r.tracer.Start(ctx, "QueueRepository.GetByID",
		trace.WithAttributes(attribute.String("queue.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.GetByID(ctx, id)
}

func (r *TracingQueue) List(ctx context.Context, status *domain.ReviewStatus) (es []domain.QueueEntry, err error) {
	ctx, span := r.tracer.Start(ctx, "QueueRepository.List")
	defer func() { finish(span, err) }()

	if status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*status)))
	}

	es, err = r.next.List(ctx, status)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(es)))
	}
	return es, err
}

func (r *TracingQueue) Resolve(ctx context.Context, e domain.QueueEntry) (err error) {
	ctx, span := r.tracer.Start(ctx, "QueueRepository.Resolve",
		trace.WithAttributes(
			attribute.String("queue.id", e.ID),
			attribute.String("queue.status", string(e.Status)),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.Resolve(ctx, e)
}

func (r *TracingQueue) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "QueueRepository.Delete",
		trace.WithAttributes(attribute.String("queue.id", id)),
	)
	defer func() { finish(span, err) }()
	return r.next.Delete(ctx, id)
}

// --- Venue ownership ---

// TracingAccess wraps a domain.AccessChecker with OpenTelemetry tracing.
type TracingAccess struct {
	next   domain.AccessChecker
	tracer trace.Tracer
}

var _ domain.AccessChecker = (*TracingAccess)(nil)

// NewTracingAccess creates a tracing decorator around the given checker.
func NewTracingAccess(next domain.AccessChecker) *TracingAccess {
	return &TracingAccess{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingAccess) VenuePermissions(ctx context.Context, actorID, venueID string) (p domain.VenuePermissions, owner bool, err error) {
	ctx, span := r.tracer.Start(ctx, "AccessChecker.VenuePermissions",
		trace.WithAttributes(
			attribute.String("actor.id", actorID),
			attribute.String("venue.id", venueID),
		),
	)
	defer func() { finish(span, err) }()

	p, owner, err = r.next.VenuePermissions(ctx, actorID, venueID)
	if err == nil {
		span.SetAttributes(attribute.Bool("venue.owner", owner))
	}
	return p, owner, err
}

func (r *TracingAccess) GrantVenue(ctx context.Context, venueID, userID string, perms domain.VenuePermissions) (err error) {
	ctx, span := r.tracer.Start(ctx, "AccessChecker.GrantVenue",
		trace.WithAttributes(
			attribute.String("venue.id", venueID),
			attribute.String("user.id", userID),
			attribute.Bool("perm.info", perms.CanEditInfo),
			attribute.Bool("perm.pricing", perms.CanEditPricing),
			attribute.Bool("perm.photos", perms.CanEditPhotos),
		),
	)
	defer func() { finish(span, err) }()
	return r.next.GrantVenue(ctx, venueID, userID, perms)
}
