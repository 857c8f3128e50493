package booking

import "github.com/iliyamo/hotel-reservation/internal/model"

// Roles understood by the capability checks.  They match the values
// stored in the users table and in the JWT role claim.
const (
	RoleUser    = "USER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// Actor is the authenticated identity a request acts as.  Handlers
// build it from the JWT claims and pass it into every engine
// operation; the engine never reads ambient request state.
type Actor struct {
	UserID uint64
	Role   string
}

// IsStaff reports whether the actor holds a manager or admin role.
func (a Actor) IsStaff() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

// CanManageBookings is the capability required for confirm, decline,
// complete, hard delete and listing all bookings.
func (a Actor) CanManageBookings() bool {
	return a.IsStaff()
}

// CanActOn reports whether the actor may view or modify the given
// booking: its owner always can, staff can act on any booking.
func (a Actor) CanActOn(b *model.Booking) bool {
	return a.IsStaff() || (a.UserID != 0 && a.UserID == b.UserID)
}

// Owns reports strict ownership, used by operations that are reserved
// for the booking's owner (extend).
func (a Actor) Owns(b *model.Booking) bool {
	return a.UserID != 0 && a.UserID == b.UserID
}
