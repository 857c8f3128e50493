package queue

// BookingConfirmedEvent is published when a manager confirms a booking.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	Reference       string `json:"reference"`
	UserID          uint64 `json:"user_id"`
	RoomID          uint64 `json:"room_id"`
	RoomNumber      string `json:"room_number"`
	RoomType        string `json:"room_type"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	GuestsCount     uint32 `json:"guests_count"`
	TotalPriceCents int64  `json:"total_price_cents"`
	ConfirmedAt     string `json:"confirmed_at"`
}

// BookingCompletedEvent is published when a stay finishes and loyalty
// points are awarded.
type BookingCompletedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	Reference       string `json:"reference"`
	UserID          uint64 `json:"user_id"`
	RoomID          uint64 `json:"room_id"`
	RoomNumber      string `json:"room_number"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	TotalPriceCents int64  `json:"total_price_cents"`
	BonusPoints     int64  `json:"bonus_points"`
	CompletedAt     string `json:"completed_at"`
}
