package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Store is the persistence surface the engine needs.  Transactions
// are carried in the context: BeginTx returns a derived context that
// the tx-aware methods recognise, and the caller must Commit or
// Rollback with that context.  Inside a transaction Room locks the
// room row (SELECT ... FOR UPDATE in the MySQL implementation) so
// that the availability check and the booking write are serialised
// per room; of two concurrent overlapping create attempts exactly one
// commits and the other observes its row and fails with a conflict.
type Store interface {
	BeginTx(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Room(ctx context.Context, id uint64) (*model.Room, error)
	Rooms(ctx context.Context) ([]model.Room, error)
	EligibleOffers(ctx context.Context, roomID uint64) ([]model.Offer, error)

	Booking(ctx context.Context, id uint64) (*model.Booking, error)
	BookingsForRoom(ctx context.Context, roomID uint64, statuses []string) ([]model.Booking, error)
	BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	AllBookings(ctx context.Context) ([]model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id uint64) error
	AddBonusPoints(ctx context.Context, userID uint64, points int64) error
}

// Config tunes engine behaviour.  Zero values fall back to defaults
// in NewEngine.
type Config struct {
	// ExtendMaxDays caps how far a single extend call may push the
	// check-out date.
	ExtendMaxDays int
	// LongStayMinNights enables the long-stay discount when > 0.
	LongStayMinNights int
	// LongStayDiscountPct is the percentage taken off qualifying
	// stays (1..99).
	LongStayDiscountPct int
	// Now supplies the current time; tests pin it.
	Now func() time.Time
}

// Engine validates, prices and persists bookings.  It owns the
// consistency invariant that no two pending/confirmed bookings for a
// room overlap.
type Engine struct {
	store Store
	cfg   Config
}

// NewEngine builds an Engine.  Panics on a nil store, mirroring how
// handlers treat missing repositories as a wiring bug.
func NewEngine(store Store, cfg Config) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	if cfg.ExtendMaxDays <= 0 {
		cfg.ExtendMaxDays = 30
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{store: store, cfg: cfg}
}

func (e *Engine) today() time.Time { return DateOnly(e.cfg.Now()) }

// CreateInput carries a booking request from the handler layer.
type CreateInput struct {
	RoomID          uint64
	CheckIn         time.Time
	CheckOut        time.Time
	GuestsCount     uint32
	SpecialRequests *string
	OfferIDs        []uint64
}

// Create validates the request, checks availability and persists a
// new PENDING booking, all inside one transaction with the room row
// locked.
func (e *Engine) Create(ctx context.Context, actor Actor, in CreateInput) (*model.Booking, error) {
	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	in.CheckIn = DateOnly(in.CheckIn)
	in.CheckOut = DateOnly(in.CheckOut)

	ie := newInputError()
	if in.RoomID == 0 {
		ie.add("room_id", "room_id is required")
	}
	if in.GuestsCount < 1 {
		ie.add("guests_count", "at least one guest is required")
	}
	if Nights(in.CheckIn, in.CheckOut) < 1 {
		ie.add("check_out_date", "check-out must be after check-in")
	}
	if in.CheckIn.Before(e.today()) {
		ie.add("check_in_date", "check-in must not be in the past")
	}
	if ie.fieldCount() > 0 {
		return nil, ie
	}

	ctx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = e.store.Rollback(ctx)
		}
	}()

	room, err := e.store.Room(ctx, in.RoomID) // locked for the tx
	if err != nil {
		return nil, err
	}
	if !room.IsAvailable {
		return nil, ErrRoomUnavailable
	}
	if in.GuestsCount > room.Capacity {
		ie := newInputError()
		ie.add("guests_count", fmt.Sprintf("room capacity is %d guests", room.Capacity))
		return nil, ie
	}

	eligible, err := e.store.EligibleOffers(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	selected, err := resolveOffers(in.OfferIDs, eligible)
	if err != nil {
		return nil, err
	}

	existing, err := e.store.BookingsForRoom(ctx, room.ID, ActiveStatuses)
	if err != nil {
		return nil, err
	}
	if conflicts := overlapping(existing, in.CheckIn, in.CheckOut, 0); len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	b := &model.Booking{
		Reference:       uuid.NewString(),
		UserID:          actor.UserID,
		RoomID:          room.ID,
		CheckIn:         in.CheckIn,
		CheckOut:        in.CheckOut,
		GuestsCount:     in.GuestsCount,
		TotalPriceCents: e.totalCents(room.PricePerNightCents, Nights(in.CheckIn, in.CheckOut), selected),
		Status:          StatusPending,
		SpecialRequests: in.SpecialRequests,
		Offers:          selected,
	}
	if err := e.store.InsertBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED.  Manager/admin only.
func (e *Engine) Confirm(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.CanManageBookings() {
		return nil, ErrForbidden
	}
	return e.transition(ctx, id, StatusConfirmed, nil)
}

// Decline rejects a PENDING booking, moving it to CANCELLED.
// Manager/admin only.  Declining a non-pending booking fails.
func (e *Engine) Decline(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.CanManageBookings() {
		return nil, ErrForbidden
	}
	return e.transition(ctx, id, StatusCancelled, func(b *model.Booking) error {
		if b.Status != StatusPending {
			return &TransitionError{From: b.Status, To: StatusCancelled}
		}
		return nil
	})
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED.  The
// owner may cancel their own booking; staff may cancel any.
func (e *Engine) Cancel(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	return e.transition(ctx, id, StatusCancelled, func(b *model.Booking) error {
		if !actor.CanActOn(b) {
			return ErrForbidden
		}
		return nil
	})
}

// Complete marks a CONFIRMED booking COMPLETED and awards loyalty
// points to its owner exactly once.  The award and the status change
// commit atomically; a repeated Complete fails the transition check
// before any points are touched, and the persisted flag guards any
// other award path.
func (e *Engine) Complete(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.CanManageBookings() {
		return nil, ErrForbidden
	}
	return e.transition(ctx, id, StatusCompleted, nil, withCompletion(e))
}

// transition loads the booking inside a transaction, runs the
// optional guard, validates the status change and persists it.
// extra hooks run after the status is set but before commit.
func (e *Engine) transition(ctx context.Context, id uint64, to string, guard func(*model.Booking) error, extra ...func(context.Context, *model.Booking) error) (*model.Booking, error) {
	ctx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = e.store.Rollback(ctx)
		}
	}()

	b, err := e.store.Booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(b); err != nil {
			return nil, err
		}
	}
	if !CanTransition(b.Status, to) {
		return nil, &TransitionError{From: b.Status, To: to}
	}
	b.Status = to
	for _, fn := range extra {
		if err := fn(ctx, b); err != nil {
			return nil, err
		}
	}
	if err := e.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return b, nil
}

// withCompletion awards bonus points when a booking completes.
func withCompletion(e *Engine) func(context.Context, *model.Booking) error {
	return func(ctx context.Context, b *model.Booking) error {
		if b.BonusAwarded {
			return nil
		}
		if points := BonusPoints(b.TotalPriceCents); points > 0 {
			if err := e.store.AddBonusPoints(ctx, b.UserID, points); err != nil {
				return err
			}
		}
		b.BonusAwarded = true
		return nil
	}
}

// Extend pushes the check-out date of the owner's PENDING or
// CONFIRMED booking by the given number of days.  The availability
// check re-runs against the new range excluding the booking itself;
// on success the total is re-priced from scratch with the booking's
// stored offer selection.  On conflict nothing changes.
func (e *Engine) Extend(ctx context.Context, actor Actor, id uint64, days int) (*model.Booking, error) {
	if days < 1 {
		ie := newInputError()
		ie.add("days", "days must be at least 1")
		return nil, ie
	}
	if days > e.cfg.ExtendMaxDays {
		ie := newInputError()
		ie.add("days", fmt.Sprintf("cannot extend by more than %d days", e.cfg.ExtendMaxDays))
		return nil, ie
	}

	ctx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = e.store.Rollback(ctx)
		}
	}()

	b, err := e.store.Booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(b) {
		return nil, ErrForbidden
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return nil, &TransitionError{From: b.Status, To: b.Status}
	}

	room, err := e.store.Room(ctx, b.RoomID) // locked for the tx
	if err != nil {
		return nil, err
	}
	newCheckOut := b.CheckOut.AddDate(0, 0, days)

	existing, err := e.store.BookingsForRoom(ctx, b.RoomID, ActiveStatuses)
	if err != nil {
		return nil, err
	}
	if conflicts := overlapping(existing, b.CheckIn, newCheckOut, b.ID); len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	b.CheckOut = newCheckOut
	// Offer prices come from the booking_offers snapshot, so an offer
	// that was deactivated or re-priced since creation keeps the price
	// the guest agreed to.
	b.TotalPriceCents = e.totalCents(room.PricePerNightCents, Nights(b.CheckIn, b.CheckOut), b.Offers)
	if err := e.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return b, nil
}

// UpdateInput carries a partial booking update.  Nil fields are left
// unchanged.  Date changes are staff-only and re-run the
// availability check and re-price the stay.
type UpdateInput struct {
	GuestsCount     *uint32
	SpecialRequests *string
	CheckIn         *time.Time
	CheckOut        *time.Time
}

// Update applies a limited field update to a PENDING or CONFIRMED
// booking.
func (e *Engine) Update(ctx context.Context, actor Actor, id uint64, in UpdateInput) (*model.Booking, error) {
	datesChange := in.CheckIn != nil || in.CheckOut != nil
	if datesChange && !actor.IsStaff() {
		return nil, ErrForbidden
	}

	ctx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = e.store.Rollback(ctx)
		}
	}()

	b, err := e.store.Booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(b) {
		return nil, ErrForbidden
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return nil, &TransitionError{From: b.Status, To: b.Status}
	}

	room, err := e.store.Room(ctx, b.RoomID) // locked for the tx
	if err != nil {
		return nil, err
	}

	if in.GuestsCount != nil {
		if *in.GuestsCount < 1 || *in.GuestsCount > room.Capacity {
			ie := newInputError()
			ie.add("guests_count", fmt.Sprintf("guests_count must be between 1 and %d", room.Capacity))
			return nil, ie
		}
		b.GuestsCount = *in.GuestsCount
	}
	if in.SpecialRequests != nil {
		b.SpecialRequests = in.SpecialRequests
	}
	if datesChange {
		checkIn, checkOut := b.CheckIn, b.CheckOut
		if in.CheckIn != nil {
			checkIn = DateOnly(*in.CheckIn)
		}
		if in.CheckOut != nil {
			checkOut = DateOnly(*in.CheckOut)
		}
		if Nights(checkIn, checkOut) < 1 {
			ie := newInputError()
			ie.add("check_out_date", "check-out must be after check-in")
			return nil, ie
		}
		existing, err := e.store.BookingsForRoom(ctx, b.RoomID, ActiveStatuses)
		if err != nil {
			return nil, err
		}
		if conflicts := overlapping(existing, checkIn, checkOut, b.ID); len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
		b.CheckIn, b.CheckOut = checkIn, checkOut
		b.TotalPriceCents = e.totalCents(room.PricePerNightCents, Nights(checkIn, checkOut), b.Offers)
	}

	if err := e.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return b, nil
}

// Get returns a booking visible to the actor.
func (e *Engine) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := e.store.Booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(b) {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListMine returns the actor's own bookings.
func (e *Engine) ListMine(ctx context.Context, actor Actor) ([]model.Booking, error) {
	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	return e.store.BookingsForUser(ctx, actor.UserID)
}

// ListAll returns every booking.  Manager/admin only.
func (e *Engine) ListAll(ctx context.Context, actor Actor) ([]model.Booking, error) {
	if !actor.CanManageBookings() {
		return nil, ErrForbidden
	}
	return e.store.AllBookings(ctx)
}

// Delete removes a booking entirely.  Manager/admin only; the normal
// lifecycle never deletes, it cancels.
func (e *Engine) Delete(ctx context.Context, actor Actor, id uint64) error {
	if !actor.CanManageBookings() {
		return ErrForbidden
	}
	if _, err := e.store.Booking(ctx, id); err != nil {
		return err
	}
	return e.store.DeleteBooking(ctx, id)
}

// Availability is the result of a read-only availability check.
type Availability struct {
	Available bool
	Conflicts []model.Booking
}

// CheckAvailability reports whether [checkIn, checkOut) is free on
// the room, optionally excluding one booking from the conflict set.
// Read-only; past ranges are permitted here.
func (e *Engine) CheckAvailability(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (Availability, error) {
	checkIn, checkOut = DateOnly(checkIn), DateOnly(checkOut)
	if !checkIn.Before(checkOut) {
		ie := newInputError()
		ie.add("check_out_date", "check-out must be after check-in")
		return Availability{}, ie
	}
	if _, err := e.store.Room(ctx, roomID); err != nil {
		return Availability{}, err
	}
	existing, err := e.store.BookingsForRoom(ctx, roomID, ActiveStatuses)
	if err != nil {
		return Availability{}, err
	}
	conflicts := overlapping(existing, checkIn, checkOut, excludeID)
	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// BookedDates returns the merged occupied ranges of non-cancelled
// bookings that intersect [from, to), for calendar rendering.
func (e *Engine) BookedDates(ctx context.Context, roomID uint64, from, to time.Time) ([]DateRange, error) {
	from, to = DateOnly(from), DateOnly(to)
	if _, err := e.store.Room(ctx, roomID); err != nil {
		return nil, err
	}
	bookings, err := e.store.BookingsForRoom(ctx, roomID, NonCancelledStatuses)
	if err != nil {
		return nil, err
	}
	var ranges []DateRange
	for _, b := range bookings {
		if Overlaps(from, to, b.CheckIn, b.CheckOut) {
			ranges = append(ranges, DateRange{Start: b.CheckIn, End: b.CheckOut})
		}
	}
	return MergeRanges(ranges), nil
}

// RoomOccupancy describes one room's state at a reference date.
type RoomOccupancy struct {
	Room     model.Room
	Occupied bool
	Current  *model.Booking
	Upcoming []model.Booking // check_in > asOf, ascending, capped at 5
}

// maxUpcoming caps the upcoming list per room in occupancy results.
const maxUpcoming = 5

// Occupancy reports per-room occupancy as of the given date.
// Manager/admin only.  A room is occupied when a non-cancelled
// booking satisfies check_in <= asOf < check_out.
func (e *Engine) Occupancy(ctx context.Context, actor Actor, asOf time.Time) ([]RoomOccupancy, error) {
	if !actor.CanManageBookings() {
		return nil, ErrForbidden
	}
	asOf = DateOnly(asOf)
	rooms, err := e.store.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoomOccupancy, 0, len(rooms))
	for _, room := range rooms {
		bookings, err := e.store.BookingsForRoom(ctx, room.ID, NonCancelledStatuses)
		if err != nil {
			return nil, err
		}
		occ := RoomOccupancy{Room: room, Upcoming: []model.Booking{}}
		for i := range bookings {
			b := bookings[i]
			switch {
			case !b.CheckIn.After(asOf) && asOf.Before(b.CheckOut):
				occ.Occupied = true
				current := b
				occ.Current = &current
			case b.CheckIn.After(asOf):
				occ.Upcoming = append(occ.Upcoming, b)
			}
		}
		sort.Slice(occ.Upcoming, func(i, j int) bool {
			return occ.Upcoming[i].CheckIn.Before(occ.Upcoming[j].CheckIn)
		})
		if len(occ.Upcoming) > maxUpcoming {
			occ.Upcoming = occ.Upcoming[:maxUpcoming]
		}
		out = append(out, occ)
	}
	return out, nil
}
