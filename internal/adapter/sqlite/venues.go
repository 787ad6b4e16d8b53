package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.VenueRepository = (*VenueRepository)(nil)

// VenueRepository implements domain.VenueRepository using SQLite.
type VenueRepository struct {
	db *sql.DB
}

const venueColumns = `id, name, category, address, city, description, price_level, photo_url, status, created_by, created_at, updated_at`

func (r *VenueRepository) Create(ctx context.Context, v domain.Venue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (`+venueColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, string(v.Category), v.Address, v.City, v.Description,
		v.PriceLevel, v.PhotoURL, string(v.Status), v.CreatedBy,
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting venue: %w", err)
	}
	return nil
}

func (r *VenueRepository) GetByID(ctx context.Context, id string) (domain.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return v, err
}

func (r *VenueRepository) List(ctx context.Context, filter domain.VenueFilter) ([]domain.Venue, error) {
	var conds []string
	var args []any

	if filter.Status != nil {
		conds = append(conds, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.Category != nil {
		conds = append(conds, `category = ?`)
		args = append(args, string(*filter.Category))
	}

	query := `SELECT ` + venueColumns + ` FROM venues` + where(conds) + ` ORDER BY created_at DESC, id DESC`
	query, args = page(query, args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}

	return venues, rows.Err()
}

func (r *VenueRepository) Update(ctx context.Context, v domain.Venue) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE venues
		 SET name = ?, category = ?, address = ?, city = ?, description = ?,
		     price_level = ?, photo_url = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		v.Name, string(v.Category), v.Address, v.City, v.Description,
		v.PriceLevel, v.PhotoURL, string(v.Status),
		formatTime(v.UpdatedAt), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrVenueNotFound
	}

	return nil
}

// Delete removes a venue. Deleting a missing venue is a no-op.
func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting venue: %w", err)
	}
	return nil
}

func scanVenue(row rowScanner) (domain.Venue, error) {
	var v domain.Venue
	var category, status, createdAt, updatedAt string

	err := row.Scan(&v.ID, &v.Name, &category, &v.Address, &v.City, &v.Description,
		&v.PriceLevel, &v.PhotoURL, &status, &v.CreatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Venue{}, err
	}
	if err != nil {
		return domain.Venue{}, fmt.Errorf("scanning venue: %w", err)
	}

	v.Category = domain.Category(category)
	v.Status = domain.Status(status)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)

	return v, nil
}
