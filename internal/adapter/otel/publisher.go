package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// Publisher is the job publisher side of the moderation workflow.
type Publisher interface {
	domain.Notifier
	domain.PointsRecorder
}

// TracingPublisher wraps a Publisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   Publisher
	tracer trace.Tracer
}

var _ Publisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next Publisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Notify(ctx context.Context, n domain.Notification) (err error) {
	ctx, span := p.tracer.Start(ctx, "Notifier.Notify",
		trace.WithAttributes(
			attribute.String("notification.kind", string(n.Kind)),
			attribute.String("item.type", string(n.ItemType)),
			attribute.String("item.id", n.ItemID),
		),
	)
	defer func() { finish(span, err) }()
	return p.next.Notify(ctx, n)
}

func (p *TracingPublisher) Record(ctx context.Context, event domain.PointsEvent) (err error) {
	ctx, span := p.tracer.Start(ctx, "PointsRecorder.Record",
		trace.WithAttributes(
			attribute.String("points.kind", string(event.Kind)),
			attribute.String("worker.id", event.WorkerID),
		),
	)
	defer func() { finish(span, err) }()
	return p.next.Record(ctx, event)
}
