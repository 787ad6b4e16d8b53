package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.AssociationRepository = (*AssociationRepository)(nil)

// AssociationRepository implements domain.AssociationRepository on the
// employment_history table.
type AssociationRepository struct {
	db *sql.DB
}

const associationColumns = `id, worker_id, venue_id, is_current, start_date, end_date, notes, created_by`

func (r *AssociationRepository) Insert(ctx context.Context, a domain.Association) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employment_history (`+associationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WorkerID, a.VenueID, a.IsCurrent,
		formatTime(a.StartDate), formatNullTime(a.EndDate),
		a.Notes, a.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting association: %w", err)
	}
	return nil
}

// ListByWorker returns the worker's full history, newest first.
func (r *AssociationRepository) ListByWorker(ctx context.Context, workerID string) ([]domain.Association, error) {
	return r.query(ctx,
		`SELECT `+associationColumns+` FROM employment_history
		 WHERE worker_id = ? ORDER BY start_date DESC, id DESC`, workerID)
}

func (r *AssociationRepository) ListCurrentByWorker(ctx context.Context, workerID string) ([]domain.Association, error) {
	return r.query(ctx,
		`SELECT `+associationColumns+` FROM employment_history
		 WHERE worker_id = ? AND is_current = 1 ORDER BY start_date, id`, workerID)
}

func (r *AssociationRepository) ListCurrentByVenue(ctx context.Context, venueID string) ([]domain.Association, error) {
	return r.query(ctx,
		`SELECT `+associationColumns+` FROM employment_history
		 WHERE venue_id = ? AND is_current = 1 ORDER BY start_date, id`, venueID)
}

func (r *AssociationRepository) End(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employment_history SET is_current = 0, end_date = ?
		 WHERE id = ? AND is_current = 1`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("ending association: %w", err)
	}
	return nil
}

// EndCurrent ends the worker's current rows in one statement and returns them.
func (r *AssociationRepository) EndCurrent(ctx context.Context, workerID string, at time.Time) ([]domain.Association, error) {
	return r.query(ctx,
		`UPDATE employment_history SET is_current = 0, end_date = ?
		 WHERE worker_id = ? AND is_current = 1
		 RETURNING `+associationColumns,
		formatTime(at), workerID)
}

func (r *AssociationRepository) Reopen(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employment_history SET is_current = 1, end_date = NULL WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("reopening association: %w", err)
	}
	return nil
}

func (r *AssociationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employment_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting association: %w", err)
	}
	return nil
}

func (r *AssociationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Association, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying associations: %w", err)
	}
	defer rows.Close()

	var out []domain.Association
	for rows.Next() {
		var a domain.Association
		var startDate string
		var endDate sql.NullString

		if err := rows.Scan(&a.ID, &a.WorkerID, &a.VenueID, &a.IsCurrent,
			&startDate, &endDate, &a.Notes, &a.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning association row: %w", err)
		}

		a.StartDate = parseTime(startDate)
		a.EndDate = parseNullTime(endDate)
		out = append(out, a)
	}

	return out, rows.Err()
}
