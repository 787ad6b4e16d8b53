package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// Compile-time checks: Publisher feeds both moderation side channels.
var (
	_ domain.Notifier       = (*Publisher)(nil)
	_ domain.PointsRecorder = (*Publisher)(nil)
)

// NotificationJobArgs carries a moderation notification. River serializes
// it as JSON into its job queue table, so the worker never needs to query
// the directory tables.
type NotificationJobArgs struct {
	Event       string `json:"event"`
	ItemType    string `json:"item_type"`
	ItemID      string `json:"item_id"`
	ProposalID  string `json:"proposal_id,omitempty"`
	ActorID     string `json:"actor_id"`
	RecipientID string `json:"recipient_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "moderation.notification" }

// PointsJobArgs credits a contributor for a worker change.
type PointsJobArgs struct {
	Action   string `json:"action"`
	WorkerID string `json:"worker_id"`
	ActorID  string `json:"actor_id"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (PointsJobArgs) Kind() string { return "points.awarded" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher enqueues notifications and points events as River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Notify enqueues a moderation notification.
func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	_, err := p.client.Insert(ctx, NotificationJobArgs{
		Event:       string(n.Kind),
		ItemType:    string(n.ItemType),
		ItemID:      n.ItemID,
		ProposalID:  n.ProposalID,
		ActorID:     n.ActorID,
		RecipientID: n.RecipientID,
		Status:      n.Status,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}

// Record enqueues a points event.
func (p *Publisher) Record(ctx context.Context, event domain.PointsEvent) error {
	_, err := p.client.Insert(ctx, PointsJobArgs{
		Action:   string(event.Kind),
		WorkerID: event.WorkerID,
		ActorID:  event.ActorID,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing points job: %w", err)
	}
	return nil
}
