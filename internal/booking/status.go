// Package booking implements the reservation core: availability and
// conflict checks over half-open date ranges, price computation from
// the nightly rate plus selected offers, the booking status state
// machine and the occupancy queries derived from it.  All mutating
// operations run inside a single storage transaction so that the
// availability check and the write commit or fail together.
package booking

// Booking statuses.  PENDING and CONFIRMED bookings occupy their date
// range; CANCELLED and COMPLETED are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// ActiveStatuses are the statuses that block other bookings from
// taking an overlapping date range on the same room.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// NonCancelledStatuses are used by read-side queries (booked dates,
// occupancy) where completed stays still count as occupied history.
var NonCancelledStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted}

// transitions enumerates the legal status moves:
//
//	PENDING   -> CONFIRMED (manager confirm)
//	PENDING   -> CANCELLED (manager decline, or cancel)
//	CONFIRMED -> CANCELLED (cancel)
//	CONFIRMED -> COMPLETED (completion after the stay)
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another.  Terminal statuses have no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status permits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// ValidStatus reports whether s is one of the four booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
