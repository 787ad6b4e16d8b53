package app

import (
	"context"
	"errors"

	"github.com/neomorfeo/venuedir/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetWorker retrieves a worker by ID.
func (s *Service) GetWorker(ctx context.Context, actor domain.Actor, id string) (domain.Worker, error) {
	if err := requireActor(actor); err != nil {
		return domain.Worker{}, err
	}

	worker, err := s.workers.GetByID(ctx, id)
	if err != nil {
		return domain.Worker{}, persistence("loading worker", err)
	}
	return worker, nil
}

// ListWorkers returns workers matching the filter.
func (s *Service) ListWorkers(ctx context.Context, actor domain.Actor, filter domain.WorkerFilter) ([]domain.Worker, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filter.Limit, filter.Offset = page(filter.Limit, filter.Offset)
	workers, err := s.workers.List(ctx, filter)
	if err != nil {
		return nil, persistence("listing workers", err)
	}
	return workers, nil
}

// WorkerAssociations returns the full employment history of a worker, newest first.
func (s *Service) WorkerAssociations(ctx context.Context, actor domain.Actor, id string) ([]domain.Association, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.workers.GetByID(ctx, id); err != nil {
		return nil, persistence("loading worker", err)
	}

	assocs, err := s.assocs.ListByWorker(ctx, id)
	if err != nil {
		return nil, persistence("listing associations", err)
	}
	return assocs, nil
}

// GetVenue retrieves a venue by ID.
func (s *Service) GetVenue(ctx context.Context, actor domain.Actor, id string) (domain.Venue, error) {
	if err := requireActor(actor); err != nil {
		return domain.Venue{}, err
	}

	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return domain.Venue{}, persistence("loading venue", err)
	}
	return venue, nil
}

// ListVenues returns venues matching the filter.
func (s *Service) ListVenues(ctx context.Context, actor domain.Actor, filter domain.VenueFilter) ([]domain.Venue, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filter.Limit, filter.Offset = page(filter.Limit, filter.Offset)
	venues, err := s.venues.List(ctx, filter)
	if err != nil {
		return nil, persistence("listing venues", err)
	}
	return venues, nil
}

// VenueWorkers returns the workers currently associated with a venue.
func (s *Service) VenueWorkers(ctx context.Context, actor domain.Actor, id string) ([]domain.Worker, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.venues.GetByID(ctx, id); err != nil {
		return nil, persistence("loading venue", err)
	}

	current, err := s.assocs.ListCurrentByVenue(ctx, id)
	if err != nil {
		return nil, persistence("listing venue associations", err)
	}

	workers := make([]domain.Worker, 0, len(current))
	for _, assoc := range current {
		worker, err := s.workers.GetByID(ctx, assoc.WorkerID)
		if errors.Is(err, domain.ErrWorkerNotFound) {
			continue
		}
		if err != nil {
			return nil, persistence("loading worker", err)
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

// ListProposals returns proposals matching the filter. Ordinary actors only
// see their own proposals.
func (s *Service) ListProposals(ctx context.Context, actor domain.Actor, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() {
		filter.ProposedBy = actor.ID
	}

	filter.Limit, filter.Offset = page(filter.Limit, filter.Offset)
	proposals, err := s.proposals.List(ctx, filter)
	if err != nil {
		return nil, persistence("listing proposals", err)
	}
	return proposals, nil
}
