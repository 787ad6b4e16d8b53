package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// Deps groups the adapters the workflow engine talks to.
type Deps struct {
	Workers      domain.WorkerRepository
	Venues       domain.VenueRepository
	Associations domain.AssociationRepository
	Proposals    domain.ProposalRepository
	Queue        domain.QueueRepository
	Access       domain.AccessChecker
	Lifecycle    domain.TransitionValidator[domain.Status, domain.Event]
	Review       domain.TransitionValidator[domain.ReviewStatus, domain.Decision]
	Notifier     domain.Notifier
	Points       domain.PointsRecorder
	Logger       *slog.Logger
}

// Service orchestrates worker and venue creation, edits and moderation.
// It holds no mutable state between calls; everything lives in the store.
type Service struct {
	workers   domain.WorkerRepository
	venues    domain.VenueRepository
	assocs    domain.AssociationRepository
	proposals domain.ProposalRepository
	queue     domain.QueueRepository
	access    domain.AccessChecker
	lifecycle domain.TransitionValidator[domain.Status, domain.Event]
	review    domain.TransitionValidator[domain.ReviewStatus, domain.Decision]
	notifier  domain.Notifier
	points    domain.PointsRecorder

	freelance   *FreelanceValidator
	employments *AssociationManager
	validate    *validator.Validate
	log         *slog.Logger
}

// NewService creates a service with the given adapters.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		workers:     deps.Workers,
		venues:      deps.Venues,
		assocs:      deps.Associations,
		proposals:   deps.Proposals,
		queue:       deps.Queue,
		access:      deps.Access,
		lifecycle:   deps.Lifecycle,
		review:      deps.Review,
		notifier:    deps.Notifier,
		points:      deps.Points,
		freelance:   NewFreelanceValidator(deps.Venues),
		employments: NewAssociationManager(deps.Associations, deps.Venues, logger),
		validate:    newValidator(),
		log:         logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so API clients can match them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates a command or change set and converts the first failure
// into a domain.ValidationError.
func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fmt.Sprintf("failed %q validation", fe.Tag())
		if fe.Param() != "" {
			reason = fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
		}
		return &domain.ValidationError{Field: fe.Field(), Reason: reason}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func requireActor(actor domain.Actor) error {
	if actor.ID == "" || !actor.Role.Valid() {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requirePrivileged(actor domain.Actor, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsPrivileged() {
		return &domain.AuthorizationError{ActorID: actor.ID, Action: action}
	}
	return nil
}

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return err
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// notify is fire-and-forget: a failed dispatch is logged and swallowed.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WarnContext(ctx, "notification dispatch failed",
			"kind", n.Kind,
			"item_type", n.ItemType,
			"item_id", n.ItemID,
			"error", err,
		)
	}
}

// credit informs points accounting; failures never undo the workflow.
func (s *Service) credit(ctx context.Context, kind domain.PointsKind, workerID, actorID string) {
	if s.points == nil {
		return
	}
	if err := s.points.Record(ctx, domain.PointsEvent{Kind: kind, WorkerID: workerID, ActorID: actorID}); err != nil {
		s.log.WarnContext(ctx, "points event failed",
			"kind", kind,
			"worker_id", workerID,
			"error", err,
		)
	}
}
