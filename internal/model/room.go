package model

import "time"

// Room represents a bookable hotel room as stored in the `rooms`
// table.  Prices are kept as integer cents to avoid floating point
// rounding in totals.  The availability flag is manager controlled
// and independent of bookings: an unavailable room cannot receive
// new bookings regardless of its calendar.
//
// Fields:
//  ID                 – primary key identifier.
//  RoomNumber         – unique human-facing room number (e.g. "204").
//  RoomType           – SINGLE, DOUBLE, SUITE or DELUXE.
//  PricePerNightCents – nightly rate in cents.
//  Capacity           – maximum number of guests.
//  Floor              – floor the room is on (nil if unspecified).
//  Description        – optional free-form description.
//  Amenities          – optional comma-separated amenity list.
//  ImageURL           – optional photo URL for listings.
//  IsAvailable        – whether the room accepts new bookings.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Room struct {
	ID                 uint64    // rooms.id
	RoomNumber         string    // rooms.room_number
	RoomType           string    // rooms.room_type
	PricePerNightCents int64     // rooms.price_per_night_cents
	Capacity           uint32    // rooms.capacity
	Floor              *int32    // rooms.floor (nullable)
	Description        *string   // rooms.description (nullable)
	Amenities          *string   // rooms.amenities (nullable)
	ImageURL           *string   // rooms.image_url (nullable)
	IsAvailable        bool      // rooms.is_available
	CreatedAt          time.Time // rooms.created_at
	UpdatedAt          time.Time // rooms.updated_at
}
