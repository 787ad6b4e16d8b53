package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.AccessChecker = (*OwnerRepository)(nil)

// OwnerRepository answers venue ownership questions from venue_owners.
type OwnerRepository struct {
	db *sql.DB
}

func (r *OwnerRepository) VenuePermissions(ctx context.Context, actorID, venueID string) (domain.VenuePermissions, bool, error) {
	var p domain.VenuePermissions
	err := r.db.QueryRowContext(ctx,
		`SELECT can_edit_info, can_edit_pricing, can_edit_photos
		 FROM venue_owners WHERE venue_id = ? AND user_id = ?`,
		venueID, actorID,
	).Scan(&p.CanEditInfo, &p.CanEditPricing, &p.CanEditPhotos)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VenuePermissions{}, false, nil
	}
	if err != nil {
		return domain.VenuePermissions{}, false, fmt.Errorf("loading venue owner: %w", err)
	}
	return p, true, nil
}

// GrantVenue creates or replaces the owner's grant.
func (r *OwnerRepository) GrantVenue(ctx context.Context, venueID, userID string, p domain.VenuePermissions) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venue_owners (venue_id, user_id, can_edit_info, can_edit_pricing, can_edit_photos)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (venue_id, user_id) DO UPDATE SET
		     can_edit_info = excluded.can_edit_info,
		     can_edit_pricing = excluded.can_edit_pricing,
		     can_edit_photos = excluded.can_edit_photos`,
		venueID, userID, p.CanEditInfo, p.CanEditPricing, p.CanEditPhotos,
	)
	if err != nil {
		return fmt.Errorf("granting venue owner: %w", err)
	}
	return nil
}
