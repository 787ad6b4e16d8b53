package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// AssociationManager changes a worker's current venues through a sequence
// of independent store writes.
type AssociationManager struct {
	assocs domain.AssociationRepository
	venues domain.VenueRepository
	log    *slog.Logger
}

// NewAssociationManager creates a manager over the given repositories.
func NewAssociationManager(assocs domain.AssociationRepository, venues domain.VenueRepository, logger *slog.Logger) *AssociationManager {
	return &AssociationManager{assocs: assocs, venues: venues, log: logger}
}

// Reconciliation records the rows a reconcile touched so a caller can undo it.
type Reconciliation struct {
	Ended    []domain.Association
	Inserted []domain.Association
}

// Reconcile replaces the worker's current associations with one current row
// per venue in venueIDs. Ending the previous rows is best-effort; a failed
// insert is returned and the partial Reconciliation must be undone by the caller.
// An empty venueIDs clears the worker's current venue.
func (m *AssociationManager) Reconcile(ctx context.Context, workerID string, venueIDs []string, actorID, note string) (Reconciliation, error) {
	var rec Reconciliation

	ended, err := m.assocs.EndCurrent(ctx, workerID, time.Now().UTC())
	if err != nil {
		m.log.WarnContext(ctx, "ending current associations failed",
			"worker_id", workerID,
			"error", err,
		)
	} else {
		rec.Ended = ended
	}

	for _, venueID := range venueIDs {
		id, err := newID()
		if err != nil {
			return rec, fmt.Errorf("generating association id: %w", err)
		}

		assoc := domain.NewAssociation(id, workerID, venueID, actorID, note)
		if err := m.assocs.Insert(ctx, assoc); err != nil {
			return rec, persistence("inserting association", err)
		}
		rec.Inserted = append(rec.Inserted, assoc)
	}

	m.log.DebugContext(ctx, "associations reconciled",
		"worker_id", workerID,
		"ended", len(rec.Ended),
		"inserted", len(rec.Inserted),
	)
	return rec, nil
}

// PruneForFreelance ends every association in current whose venue is not a
// nightclub, leaving nightclub rows untouched. current is the snapshot taken
// before the update. Failures are logged and the row is skipped.
func (m *AssociationManager) PruneForFreelance(ctx context.Context, current []domain.Association) []domain.Association {
	var pruned []domain.Association
	now := time.Now().UTC()

	for _, assoc := range current {
		if !assoc.IsCurrent {
			continue
		}

		venue, err := m.venues.GetByID(ctx, assoc.VenueID)
		if err != nil {
			m.log.WarnContext(ctx, "loading venue for freelance prune failed",
				"association_id", assoc.ID,
				"venue_id", assoc.VenueID,
				"error", err,
			)
			continue
		}
		if venue.Category == domain.CategoryNightclub {
			continue
		}

		if err := m.assocs.End(ctx, assoc.ID, now); err != nil {
			m.log.WarnContext(ctx, "ending non-nightclub association failed",
				"association_id", assoc.ID,
				"error", err,
			)
			continue
		}
		pruned = append(pruned, assoc)
	}

	return pruned
}

// EndAtVenue ends every current association at the venue, best-effort.
func (m *AssociationManager) EndAtVenue(ctx context.Context, venueID string) {
	current, err := m.assocs.ListCurrentByVenue(ctx, venueID)
	if err != nil {
		m.log.WarnContext(ctx, "listing venue associations failed", "venue_id", venueID, "error", err)
		return
	}

	now := time.Now().UTC()
	for _, assoc := range current {
		if err := m.assocs.End(ctx, assoc.ID, now); err != nil {
			m.log.WarnContext(ctx, "ending venue association failed", "association_id", assoc.ID, "error", err)
		}
	}
}

// Undo deletes the rows a reconcile inserted and reopens the rows it ended.
func (m *AssociationManager) Undo(ctx context.Context, rec Reconciliation) error {
	var failed int
	for _, assoc := range rec.Inserted {
		if err := m.assocs.Delete(ctx, assoc.ID); err != nil {
			failed++
			m.log.ErrorContext(ctx, "deleting inserted association failed", "association_id", assoc.ID, "error", err)
		}
	}
	if err := m.reopen(ctx, rec.Ended); err != nil {
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("undoing reconcile: %d step(s) failed", failed)
	}
	return nil
}

func (m *AssociationManager) reopen(ctx context.Context, assocs []domain.Association) error {
	var failed int
	for _, assoc := range assocs {
		if err := m.assocs.Reopen(ctx, assoc.ID); err != nil {
			failed++
			m.log.ErrorContext(ctx, "reopening association failed", "association_id", assoc.ID, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("reopening %d association(s) failed", failed)
	}
	return nil
}
