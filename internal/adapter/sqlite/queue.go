package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.QueueRepository = (*QueueRepository)(nil)

// QueueRepository implements domain.QueueRepository on moderation_queue.
type QueueRepository struct {
	db *sql.DB
}

const queueColumns = `id, item_type, item_id, submitted_by, status, reviewed_by, reviewed_at, created_at`

func (r *QueueRepository) Enqueue(ctx context.Context, e domain.QueueEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO moderation_queue (`+queueColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.ItemType), e.ItemID, e.SubmittedBy, string(e.Status),
		nullString(e.ReviewedBy), formatNullTime(e.ReviewedAt), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting queue entry: %w", err)
	}
	return nil
}

func (r *QueueRepository) GetByID(ctx context.Context, id string) (domain.QueueEntry, error) {
	e, err := scanQueueEntry(r.db.QueryRowContext(ctx,
		`SELECT `+queueColumns+` FROM moderation_queue WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QueueEntry{}, domain.ErrQueueEntryNotFound
	}
	return e, err
}

// List returns entries oldest first, the order moderators work through them.
func (r *QueueRepository) List(ctx context.Context, status *domain.ReviewStatus) ([]domain.QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM moderation_queue`
	var args []any

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}

	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing queue entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *QueueRepository) Resolve(ctx context.Context, e domain.QueueEntry) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE moderation_queue SET status = ?, reviewed_by = ?, reviewed_at = ?
		 WHERE id = ? AND status = 'pending'`,
		string(e.Status), nullString(e.ReviewedBy), formatNullTime(e.ReviewedAt), e.ID,
	)
	if err != nil {
		return fmt.Errorf("resolving queue entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, e.ID); err != nil {
		return err
	}
	return domain.ErrAlreadyReviewed
}

func (r *QueueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM moderation_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting queue entry: %w", err)
	}
	return nil
}

func scanQueueEntry(row rowScanner) (domain.QueueEntry, error) {
	var e domain.QueueEntry
	var itemType, status, createdAt string
	var reviewedBy, reviewedAt sql.NullString

	err := row.Scan(&e.ID, &itemType, &e.ItemID, &e.SubmittedBy, &status,
		&reviewedBy, &reviewedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QueueEntry{}, err
	}
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("scanning queue entry: %w", err)
	}

	e.ItemType = domain.ItemType(itemType)
	e.Status = domain.ReviewStatus(status)
	e.ReviewedBy = reviewedBy.String
	e.ReviewedAt = parseNullTime(reviewedAt)
	e.CreatedAt = parseTime(createdAt)

	return e, nil
}
