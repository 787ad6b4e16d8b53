package domain

// Role is the access level of an authenticated actor.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleOwner     Role = "owner"
	RoleUser      Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleOwner, RoleUser:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsPrivileged reports whether the actor bypasses pending review.
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleModerator
}

// VenuePermissions is the fine-grained edit grant of a venue owner.
type VenuePermissions struct {
	CanEditInfo    bool
	CanEditPricing bool
	CanEditPhotos  bool
}

// FullVenuePermissions grants every venue edit capability.
var FullVenuePermissions = VenuePermissions{CanEditInfo: true, CanEditPricing: true, CanEditPhotos: true}
