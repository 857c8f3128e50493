package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  A single
// mutex held for the duration of a transaction stands in for the row
// lock the MySQL store takes, so concurrent create attempts serialise
// exactly like they do against the real database.
type memStore struct {
	mu         sync.Mutex
	rooms      map[uint64]model.Room
	offers     map[uint64]model.Offer
	roomOffers map[uint64][]uint64
	bookings   map[uint64]model.Booking
	bonus      map[uint64]int64
	nextID     uint64
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		rooms:      make(map[uint64]model.Room),
		offers:     make(map[uint64]model.Offer),
		roomOffers: make(map[uint64][]uint64),
		bookings:   make(map[uint64]model.Booking),
		bonus:      make(map[uint64]int64),
	}
}

func (s *memStore) BeginTx(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	return context.WithValue(ctx, memTxKey{}, true), nil
}

func (s *memStore) Commit(ctx context.Context) error {
	s.mu.Unlock()
	return nil
}

func (s *memStore) Rollback(ctx context.Context) error {
	s.mu.Unlock()
	return nil
}

// lock takes the store mutex for calls made outside a transaction and
// returns the matching unlock.  Inside a transaction the mutex is
// already held.
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) Room(ctx context.Context, id uint64) (*model.Room, error) {
	defer s.lock(ctx)()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (s *memStore) Rooms(ctx context.Context) ([]model.Room, error) {
	defer s.lock(ctx)()
	out := make([]model.Room, 0, len(s.rooms))
	for id := uint64(1); id <= s.nextID; id++ {
		if room, ok := s.rooms[id]; ok {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *memStore) EligibleOffers(ctx context.Context, roomID uint64) ([]model.Offer, error) {
	defer s.lock(ctx)()
	linked := make(map[uint64]bool)
	for _, id := range s.roomOffers[roomID] {
		linked[id] = true
	}
	var out []model.Offer
	for id := uint64(1); id <= s.nextID; id++ {
		o, ok := s.offers[id]
		if !ok || !o.IsActive {
			continue
		}
		if o.OfferType == model.OfferTypeGlobal || linked[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	defer s.lock(ctx)()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *memStore) BookingsForRoom(ctx context.Context, roomID uint64, statuses []string) ([]model.Booking, error) {
	defer s.lock(ctx)()
	allowed := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	var out []model.Booking
	for id := uint64(1); id <= s.nextID; id++ {
		b, ok := s.bookings[id]
		if ok && b.RoomID == roomID && allowed[b.Status] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	defer s.lock(ctx)()
	var out []model.Booking
	for id := uint64(1); id <= s.nextID; id++ {
		if b, ok := s.bookings[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) AllBookings(ctx context.Context) ([]model.Booking, error) {
	defer s.lock(ctx)()
	var out []model.Booking
	for id := uint64(1); id <= s.nextID; id++ {
		if b, ok := s.bookings[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	defer s.lock(ctx)()
	s.nextID++
	b.ID = s.nextID
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) UpdateBooking(ctx context.Context, b *model.Booking) error {
	defer s.lock(ctx)()
	if _, ok := s.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) DeleteBooking(ctx context.Context, id uint64) error {
	defer s.lock(ctx)()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *memStore) AddBonusPoints(ctx context.Context, userID uint64, points int64) error {
	defer s.lock(ctx)()
	s.bonus[userID] += points
	return nil
}

func (s *memStore) addRoom(room model.Room) uint64 {
	s.nextID++
	room.ID = s.nextID
	s.rooms[room.ID] = room
	return room.ID
}

func (s *memStore) addOffer(o model.Offer) uint64 {
	s.nextID++
	o.ID = s.nextID
	s.offers[o.ID] = o
	return o.ID
}

// ----- fixtures -----

func date(s string) time.Time {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	guest   = Actor{UserID: 10, Role: RoleUser}
	guest2  = Actor{UserID: 11, Role: RoleUser}
	manager = Actor{UserID: 1, Role: RoleManager}
)

// newFixture seeds a store with one double room at 10000 cents/night,
// one closed room, a global breakfast offer and a room-specific spa
// offer, and pins the engine clock to 2026-01-01.
func newFixture(t *testing.T, cfg Config) (*Engine, *memStore, uint64) {
	t.Helper()
	store := newMemStore()
	roomID := store.addRoom(model.Room{
		RoomNumber:         "204",
		RoomType:           "DOUBLE",
		PricePerNightCents: 10000,
		Capacity:           2,
		IsAvailable:        true,
	})
	store.addOffer(model.Offer{Name: "Breakfast", PriceCents: 2500, OfferType: model.OfferTypeGlobal, IsActive: true})
	spa := store.addOffer(model.Offer{Name: "Spa", PriceCents: 5000, OfferType: model.OfferTypeRoomSpecific, IsActive: true})
	store.roomOffers[roomID] = []uint64{spa}

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return date("2026-01-01") }
	}
	return NewEngine(store, cfg), store, roomID
}

func mustCreate(t *testing.T, e *Engine, actor Actor, in CreateInput) *model.Booking {
	t.Helper()
	b, err := e.Create(context.Background(), actor, in)
	require.NoError(t, err)
	return b
}

// ----- create -----

func TestCreateBooking(t *testing.T) {
	e, store, roomID := newFixture(t, Config{})

	special := "late arrival"
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:          roomID,
		CheckIn:         date("2026-02-01"),
		CheckOut:        date("2026-02-04"),
		GuestsCount:     2,
		SpecialRequests: &special,
		OfferIDs:        []uint64{2, 3},
	})

	assert.Equal(t, StatusPending, b.Status)
	assert.NotEmpty(t, b.Reference)
	assert.Equal(t, guest.UserID, b.UserID)
	// 3 nights x 10000 + breakfast 2500 + spa 5000
	assert.Equal(t, int64(37500), b.TotalPriceCents)
	assert.Len(t, b.Offers, 2)

	stored, err := store.Booking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.TotalPriceCents, stored.TotalPriceCents)
}

func TestCreateValidation(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})

	cases := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing room", CreateInput{CheckIn: date("2026-02-01"), CheckOut: date("2026-02-02"), GuestsCount: 1}, "room_id"},
		{"zero guests", CreateInput{RoomID: roomID, CheckIn: date("2026-02-01"), CheckOut: date("2026-02-02")}, "guests_count"},
		{"reversed dates", CreateInput{RoomID: roomID, CheckIn: date("2026-02-04"), CheckOut: date("2026-02-01"), GuestsCount: 1}, "check_out_date"},
		{"same day", CreateInput{RoomID: roomID, CheckIn: date("2026-02-01"), CheckOut: date("2026-02-01"), GuestsCount: 1}, "check_out_date"},
		{"past check-in", CreateInput{RoomID: roomID, CheckIn: date("2025-12-31"), CheckOut: date("2026-01-02"), GuestsCount: 1}, "check_in_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Create(context.Background(), guest, tc.in)
			ie := IsInputError(err)
			require.NotNil(t, ie, "expected input error, got %v", err)
			assert.Contains(t, ie.Fields(), tc.field)
		})
	}
}

func TestCreateTodayIsAllowed(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-01-01"),
		CheckOut:    date("2026-01-02"),
		GuestsCount: 1,
	})
	assert.Equal(t, int64(10000), b.TotalPriceCents)
}

func TestCreateOverCapacity(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	_, err := e.Create(context.Background(), guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 3,
	})
	ie := IsInputError(err)
	require.NotNil(t, ie)
	assert.Contains(t, ie.Fields(), "guests_count")
}

func TestCreateClosedRoom(t *testing.T) {
	e, store, _ := newFixture(t, Config{})
	closed := store.addRoom(model.Room{RoomNumber: "500", PricePerNightCents: 5000, Capacity: 2, IsAvailable: false})

	_, err := e.Create(context.Background(), guest, CreateInput{
		RoomID:      closed,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 1,
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateRejectsUnknownOffer(t *testing.T) {
	e, store, roomID := newFixture(t, Config{})
	inactive := store.addOffer(model.Offer{Name: "Old promo", PriceCents: 100, OfferType: model.OfferTypeGlobal, IsActive: false})
	unlinked := store.addOffer(model.Offer{Name: "Other room perk", PriceCents: 100, OfferType: model.OfferTypeRoomSpecific, IsActive: true})

	for _, offerID := range []uint64{99, inactive, unlinked} {
		_, err := e.Create(context.Background(), guest, CreateInput{
			RoomID:      roomID,
			CheckIn:     date("2026-02-01"),
			CheckOut:    date("2026-02-02"),
			GuestsCount: 1,
			OfferIDs:    []uint64{offerID},
		})
		ie := IsInputError(err)
		require.NotNil(t, ie, "offer %d should be rejected", offerID)
		assert.Contains(t, ie.Fields(), "offer_ids")
	}
}

func TestCreateDuplicateOfferCountsOnce(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 1,
		OfferIDs:    []uint64{2, 2, 2},
	})
	assert.Equal(t, int64(12500), b.TotalPriceCents)
	assert.Len(t, b.Offers, 1)
}

func TestCreateConflicts(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	first := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	// Overlapping range fails and names the blocking booking.
	_, err := e.Create(context.Background(), guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-03"),
		CheckOut:    date("2026-02-06"),
		GuestsCount: 1,
	})
	ce := IsConflictError(err)
	require.NotNil(t, ce)
	require.Len(t, ce.Conflicts, 1)
	assert.Equal(t, first.ID, ce.Conflicts[0].ID)

	// Back-to-back is fine: check-out day equals the next check-in.
	_, err = e.Create(context.Background(), guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-04"),
		CheckOut:    date("2026-02-06"),
		GuestsCount: 1,
	})
	assert.NoError(t, err)
}

func TestCancelledBookingFreesDates(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})
	_, err := e.Cancel(context.Background(), guest, b.ID)
	require.NoError(t, err)

	_, err = e.Create(context.Background(), guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})
	assert.NoError(t, err)
}

func TestConcurrentCreateOneWins(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	in := CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-03-01"),
		CheckOut:    date("2026-03-05"),
		GuestsCount: 1,
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, actor := range []Actor{guest, guest2} {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			_, err := e.Create(context.Background(), a, in)
			errs <- err
		}(actor)
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case IsConflictError(err) != nil:
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one create must succeed")
	assert.Equal(t, 1, conflict, "the loser must see a conflict")
}

// ----- transitions -----

func TestLifecycleHappyPath(t *testing.T) {
	e, store, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
		OfferIDs:    []uint64{2, 3},
	})

	confirmed, err := e.Confirm(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	completed, err := e.Complete(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.True(t, completed.BonusAwarded)
	// 37500 cents -> 37 points
	assert.Equal(t, int64(37), store.bonus[guest.UserID])
}

func TestTransitionsRequireStaff(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	_, err := e.Confirm(context.Background(), guest, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.Decline(context.Background(), guest, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.Complete(context.Background(), guest, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.ListAll(context.Background(), guest)
	assert.ErrorIs(t, err, ErrForbidden)
	err = e.Delete(context.Background(), guest, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestIllegalTransitions(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	// Completing a pending booking skips confirmation.
	_, err := e.Complete(context.Background(), manager, b.ID)
	require.NotNil(t, IsTransitionError(err))

	_, err = e.Confirm(context.Background(), manager, b.ID)
	require.NoError(t, err)

	// Declining is only for pending bookings.
	_, err = e.Decline(context.Background(), manager, b.ID)
	require.NotNil(t, IsTransitionError(err))

	_, err = e.Cancel(context.Background(), guest, b.ID)
	require.NoError(t, err)

	// Cancelled is terminal.
	_, err = e.Confirm(context.Background(), manager, b.ID)
	require.NotNil(t, IsTransitionError(err))
	_, err = e.Cancel(context.Background(), guest, b.ID)
	require.NotNil(t, IsTransitionError(err))
}

func TestBonusAwardedExactlyOnce(t *testing.T) {
	e, store, _ := newFixture(t, Config{})
	// 1 night, room 9900 cents -> 9900 total -> 9 points.
	cheap := store.addRoom(model.Room{RoomNumber: "101", PricePerNightCents: 9900, Capacity: 1, IsAvailable: true})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      cheap,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 1,
	})

	_, err := e.Confirm(context.Background(), manager, b.ID)
	require.NoError(t, err)
	_, err = e.Complete(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), store.bonus[guest.UserID])

	// A second complete fails the transition and awards nothing more.
	_, err = e.Complete(context.Background(), manager, b.ID)
	require.NotNil(t, IsTransitionError(err))
	assert.Equal(t, int64(9), store.bonus[guest.UserID])
}

func TestCancelPermissions(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	_, err := e.Cancel(context.Background(), guest2, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Staff may cancel anyone's booking.
	cancelled, err := e.Cancel(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

// ----- extend -----

func TestExtend(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
		OfferIDs:    []uint64{2},
	})
	require.Equal(t, int64(32500), b.TotalPriceCents)

	extended, err := e.Extend(context.Background(), guest, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, date("2026-02-06"), extended.CheckOut)
	// 5 nights x 10000 + breakfast 2500
	assert.Equal(t, int64(52500), extended.TotalPriceCents)
}

func TestExtendConflictLeavesBookingUnchanged(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})
	mustCreate(t, e, guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-05"),
		CheckOut:    date("2026-02-08"),
		GuestsCount: 1,
	})

	// Extending into the neighbour fails...
	_, err := e.Extend(context.Background(), guest, b.ID, 3)
	require.NotNil(t, IsConflictError(err))

	// ...and the booking keeps its dates and price.
	after, err := e.Get(context.Background(), guest, b.ID)
	require.NoError(t, err)
	assert.Equal(t, date("2026-02-04"), after.CheckOut)
	assert.Equal(t, int64(30000), after.TotalPriceCents)

	// Extending up to the neighbour's check-in works.
	extended, err := e.Extend(context.Background(), guest, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, date("2026-02-05"), extended.CheckOut)
}

func TestExtendRules(t *testing.T) {
	e, _, roomID := newFixture(t, Config{ExtendMaxDays: 5})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	_, err := e.Extend(context.Background(), guest, b.ID, 0)
	require.NotNil(t, IsInputError(err))
	_, err = e.Extend(context.Background(), guest, b.ID, 6)
	require.NotNil(t, IsInputError(err))

	// Extend is owner-only, even for staff.
	_, err = e.Extend(context.Background(), manager, b.ID, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	// Cancelled bookings cannot be extended.
	_, err = e.Cancel(context.Background(), guest, b.ID)
	require.NoError(t, err)
	_, err = e.Extend(context.Background(), guest, b.ID, 1)
	te := IsTransitionError(err)
	require.NotNil(t, te)
	assert.Equal(t, te.From, te.To)
}

// ----- update -----

func TestUpdateGuestsAndRequests(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	two := uint32(2)
	note := "top floor please"
	updated, err := e.Update(context.Background(), guest, b.ID, UpdateInput{GuestsCount: &two, SpecialRequests: &note})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), updated.GuestsCount)
	require.NotNil(t, updated.SpecialRequests)
	assert.Equal(t, note, *updated.SpecialRequests)
	// Price does not depend on guests.
	assert.Equal(t, b.TotalPriceCents, updated.TotalPriceCents)

	three := uint32(3)
	_, err = e.Update(context.Background(), guest, b.ID, UpdateInput{GuestsCount: &three})
	require.NotNil(t, IsInputError(err))
}

func TestUpdateDatesStaffOnly(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	newOut := date("2026-02-06")
	_, err := e.Update(context.Background(), guest, b.ID, UpdateInput{CheckOut: &newOut})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := e.Update(context.Background(), manager, b.ID, UpdateInput{CheckOut: &newOut})
	require.NoError(t, err)
	assert.Equal(t, newOut, updated.CheckOut)
	// Re-priced: 5 nights x 10000.
	assert.Equal(t, int64(50000), updated.TotalPriceCents)
}

// ----- reads -----

func TestGetVisibility(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	_, err := e.Get(context.Background(), guest2, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := e.Get(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = e.Get(context.Background(), guest, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAvailability(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})

	av, err := e.CheckAvailability(context.Background(), roomID, date("2026-02-02"), date("2026-02-05"), 0)
	require.NoError(t, err)
	assert.False(t, av.Available)
	require.Len(t, av.Conflicts, 1)

	// Excluding the booking itself frees the range.
	av, err = e.CheckAvailability(context.Background(), roomID, date("2026-02-02"), date("2026-02-05"), b.ID)
	require.NoError(t, err)
	assert.True(t, av.Available)

	_, err = e.CheckAvailability(context.Background(), 999, date("2026-02-01"), date("2026-02-02"), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookedDatesMergesRanges(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})
	mustCreate(t, e, guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-04"),
		CheckOut:    date("2026-02-07"),
		GuestsCount: 1,
	})
	mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-10"),
		CheckOut:    date("2026-02-12"),
		GuestsCount: 1,
	})

	ranges, err := e.BookedDates(context.Background(), roomID, date("2026-02-01"), date("2026-03-01"))
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, date("2026-02-01"), ranges[0].Start)
	assert.Equal(t, date("2026-02-07"), ranges[0].End)
	assert.Equal(t, date("2026-02-10"), ranges[1].Start)
	assert.Equal(t, date("2026-02-12"), ranges[1].End)
}

func TestOccupancy(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	current := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-04"),
		GuestsCount: 1,
	})
	upcoming := mustCreate(t, e, guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-10"),
		CheckOut:    date("2026-02-12"),
		GuestsCount: 1,
	})

	_, err := e.Occupancy(context.Background(), guest, date("2026-02-02"))
	assert.ErrorIs(t, err, ErrForbidden)

	occ, err := e.Occupancy(context.Background(), manager, date("2026-02-02"))
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.True(t, occ[0].Occupied)
	require.NotNil(t, occ[0].Current)
	assert.Equal(t, current.ID, occ[0].Current.ID)
	require.Len(t, occ[0].Upcoming, 1)
	assert.Equal(t, upcoming.ID, occ[0].Upcoming[0].ID)

	// Check-out day is not occupied.
	occ, err = e.Occupancy(context.Background(), manager, date("2026-02-04"))
	require.NoError(t, err)
	assert.False(t, occ[0].Occupied)
	assert.Nil(t, occ[0].Current)
}

func TestListMineAndAll(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 1,
	})
	mustCreate(t, e, guest2, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-02"),
		CheckOut:    date("2026-02-03"),
		GuestsCount: 1,
	})

	mine, err := e.ListMine(context.Background(), guest)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := e.ListAll(context.Background(), manager)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDelete(t *testing.T) {
	e, _, roomID := newFixture(t, Config{})
	b := mustCreate(t, e, guest, CreateInput{
		RoomID:      roomID,
		CheckIn:     date("2026-02-01"),
		CheckOut:    date("2026-02-02"),
		GuestsCount: 1,
	})

	require.NoError(t, e.Delete(context.Background(), manager, b.ID))
	assert.ErrorIs(t, e.Delete(context.Background(), manager, b.ID), ErrNotFound)
}
