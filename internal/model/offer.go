package model

import "time"

// Offer types.  GLOBAL offers may be attached to any booking while
// ROOM_SPECIFIC offers apply only to rooms linked through the
// `room_offers` table.
const (
	OfferTypeGlobal       = "GLOBAL"
	OfferTypeRoomSpecific = "ROOM_SPECIFIC"
)

// Offer represents a paid add-on service (breakfast, spa access,
// late check-out and so on) as stored in the `offers` table.  An
// offer can be selected at booking time and its price is added to
// the booking total.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – short display name.
//  Description – longer description shown to guests.
//  PriceCents  – price in cents added to the booking total.
//  OfferType   – GLOBAL or ROOM_SPECIFIC.
//  IsActive    – inactive offers cannot be selected.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Offer struct {
	ID          uint64    // offers.id
	Name        string    // offers.name
	Description string    // offers.description
	PriceCents  int64     // offers.price_cents
	OfferType   string    // offers.offer_type
	IsActive    bool      // offers.is_active
	CreatedAt   time.Time // offers.created_at
	UpdatedAt   time.Time // offers.updated_at
}
