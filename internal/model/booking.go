package model

import "time"

// Booking records a guest's stay in a room over a half-open date
// range [CheckIn, CheckOut).  Check-out day of one booking may equal
// the check-in day of the next booking for the same room (same-day
// turnover).  Both dates are date-only values stored in DATE columns
// and normalised to midnight UTC in Go.
//
// The total price is a persisted snapshot computed at creation (and
// recomputed when dates change) from the nightly rate and the
// selected offers; later room or offer price edits do not affect
// existing bookings.
//
// Fields:
//  ID              – primary key identifier.
//  Reference       – client-facing UUID assigned at creation.
//  UserID          – owner of the booking.
//  RoomID          – booked room.
//  CheckIn         – first night (inclusive).
//  CheckOut        – day of departure (exclusive).
//  GuestsCount     – number of guests, at most room capacity.
//  TotalPriceCents – price snapshot in cents.
//  Status          – PENDING, CONFIRMED, CANCELLED or COMPLETED.
//  SpecialRequests – optional free-form text from the guest.
//  BonusAwarded    – set once loyalty points have been granted.
//  Offers          – selected offers (loaded from booking_offers).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	Reference       string    // bookings.reference
	UserID          uint64    // bookings.user_id
	RoomID          uint64    // bookings.room_id
	CheckIn         time.Time // bookings.check_in
	CheckOut        time.Time // bookings.check_out
	GuestsCount     uint32    // bookings.guests_count
	TotalPriceCents int64     // bookings.total_price_cents
	Status          string    // bookings.status
	SpecialRequests *string   // bookings.special_requests (nullable)
	BonusAwarded    bool      // bookings.bonus_awarded
	Offers          []Offer   // joined via booking_offers
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}
