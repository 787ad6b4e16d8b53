package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.WorkerRepository = (*WorkerRepository)(nil)

// WorkerRepository implements domain.WorkerRepository using SQLite.
type WorkerRepository struct {
	db *sql.DB
}

const workerColumns = `id, name, bio, photo_url, is_freelance, status, owner_id, created_by, created_at, updated_at`

func (r *WorkerRepository) Create(ctx context.Context, w domain.Worker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (`+workerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Bio, w.PhotoURL, w.IsFreelance, string(w.Status),
		w.OwnerID, w.CreatedBy,
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting worker: %w", err)
	}
	return nil
}

func (r *WorkerRepository) GetByID(ctx context.Context, id string) (domain.Worker, error) {
	w, err := scanWorker(r.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Worker{}, domain.ErrWorkerNotFound
	}
	return w, err
}

func (r *WorkerRepository) List(ctx context.Context, filter domain.WorkerFilter) ([]domain.Worker, error) {
	var conds []string
	var args []any

	if filter.Status != nil {
		conds = append(conds, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.OwnerID != "" {
		conds = append(conds, `owner_id = ?`)
		args = append(args, filter.OwnerID)
	}

	query := `SELECT ` + workerColumns + ` FROM workers` + where(conds) + ` ORDER BY created_at DESC, id DESC`
	query, args = page(query, args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var workers []domain.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	return workers, rows.Err()
}

// Update overwrites every mutable column, including status and updated_at,
// so it can also restore an earlier snapshot.
func (r *WorkerRepository) Update(ctx context.Context, w domain.Worker) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workers
		 SET name = ?, bio = ?, photo_url = ?, is_freelance = ?, status = ?, owner_id = ?, updated_at = ?
		 WHERE id = ?`,
		w.Name, w.Bio, w.PhotoURL, w.IsFreelance, string(w.Status), w.OwnerID,
		formatTime(w.UpdatedAt), w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating worker: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrWorkerNotFound
	}

	return nil
}

// Delete removes a worker. Deleting a missing worker is a no-op.
func (r *WorkerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting worker: %w", err)
	}
	return nil
}

func scanWorker(row rowScanner) (domain.Worker, error) {
	var w domain.Worker
	var status, createdAt, updatedAt string

	err := row.Scan(&w.ID, &w.Name, &w.Bio, &w.PhotoURL, &w.IsFreelance, &status,
		&w.OwnerID, &w.CreatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Worker{}, err
	}
	if err != nil {
		return domain.Worker{}, fmt.Errorf("scanning worker: %w", err)
	}

	w.Status = domain.Status(status)
	w.CreatedAt = parseTime(createdAt)
	w.UpdatedAt = parseTime(updatedAt)

	return w, nil
}
