package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingStore implements booking.Store over MySQL.  Transactions are
// carried in the context: BeginTx stashes a *sql.Tx that the other
// methods pick up, falling back to the pooled *sql.DB outside a
// transaction.  Inside a transaction single-row reads run with
// FOR UPDATE: the room row is locked for the duration of a
// create/extend, which serialises the availability check and the
// booking write per room, and the booking row is locked during a
// status transition so two concurrent transitions on the same booking
// queue behind each other instead of both reading the stale status.
type BookingStore struct{ DB *sql.DB }

func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{DB: db} }

type txKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// forUpdate returns the locking suffix for single-row reads: inside a
// transaction the row is read with FOR UPDATE, outside one it is a
// plain read.
func forUpdate(ctx context.Context) string {
	if _, ok := txFrom(ctx); ok {
		return " FOR UPDATE"
	}
	return ""
}

func roomSelect(ctx context.Context) string {
	return "SELECT " + roomColumns + " FROM rooms WHERE id=?" + forUpdate(ctx)
}

func bookingSelect(ctx context.Context) string {
	return "SELECT " + bookingColumns + " FROM bookings WHERE id=? LIMIT 1" + forUpdate(ctx)
}

// querier is the subset of *sql.DB / *sql.Tx the store needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *BookingStore) q(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return s.DB
}

// BeginTx opens a transaction and returns a context carrying it.
func (s *BookingStore) BeginTx(ctx context.Context) (context.Context, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ctx, err
	}
	return withTx(ctx, tx), nil
}

// Commit commits the transaction carried by ctx.
func (s *BookingStore) Commit(ctx context.Context) error {
	tx, ok := txFrom(ctx)
	if !ok {
		return errors.New("no transaction in context")
	}
	return tx.Commit()
}

// Rollback rolls back the transaction carried by ctx.  Safe to call
// after Commit; the driver reports sql.ErrTxDone which is ignored by
// the deferred rollbacks in the engine.
func (s *BookingStore) Rollback(ctx context.Context) error {
	tx, ok := txFrom(ctx)
	if !ok {
		return errors.New("no transaction in context")
	}
	return tx.Rollback()
}

// Room loads a room.  Inside a transaction the row is locked with
// SELECT ... FOR UPDATE so concurrent bookings on the same room queue
// behind each other.
func (s *BookingStore) Room(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := scanRoom(s.q(ctx).QueryRowContext(ctx, roomSelect(ctx), id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Rooms returns all rooms ordered by room number (occupancy reads).
func (s *BookingStore) Rooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms ORDER BY room_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// EligibleOffers returns the active offers valid for the room: all
// GLOBAL offers plus ROOM_SPECIFIC ones linked via room_offers.
func (s *BookingStore) EligibleOffers(ctx context.Context, roomID uint64) ([]model.Offer, error) {
	const q = `SELECT ` + offerColumns + ` FROM offers
	           WHERE is_active=1 AND (offer_type='GLOBAL'
	                 OR id IN (SELECT offer_id FROM room_offers WHERE room_id=?))
	           ORDER BY id`
	rows, err := s.q(ctx).QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

const bookingColumns = "id,reference,user_id,room_id,check_in,check_out,guests_count,total_price_cents,status,special_requests,bonus_awarded,created_at,updated_at"

func scanBooking(scan func(dest ...any) error) (model.Booking, error) {
	var b model.Booking
	var special sql.NullString
	err := scan(&b.ID, &b.Reference, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.GuestsCount, &b.TotalPriceCents, &b.Status, &special, &b.BonusAwarded,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if special.Valid {
		sr := special.String
		b.SpecialRequests = &sr
	}
	return b, nil
}

// Booking loads one booking with its offer selection.  Returns
// booking.ErrNotFound when the id is unknown.  Inside a transaction
// the row is locked so a concurrent transition cannot read the same
// status and, say, award bonus points twice.
func (s *BookingStore) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	row := s.q(ctx).QueryRowContext(ctx, bookingSelect(ctx), id)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	bookings := []model.Booking{b}
	if err := s.loadOffers(ctx, bookings); err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

// BookingsForRoom returns the room's bookings in the given statuses,
// offers included, ordered by check-in.
func (s *BookingStore) BookingsForRoom(ctx context.Context, roomID uint64, statuses []string) ([]model.Booking, error) {
	if len(statuses) == 0 {
		return []model.Booking{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]interface{}, 0, len(statuses)+1)
	args = append(args, roomID)
	for _, st := range statuses {
		args = append(args, st)
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id=? AND status IN ("+placeholders+") ORDER BY check_in",
		args...)
	if err != nil {
		return nil, err
	}
	return s.collectWithOffers(ctx, rows)
}

// BookingsForUser returns a user's bookings, newest first.
func (s *BookingStore) BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	return s.collectWithOffers(ctx, rows)
}

// AllBookings returns every booking, newest first.
func (s *BookingStore) AllBookings(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.collectWithOffers(ctx, rows)
}

func (s *BookingStore) collectWithOffers(ctx context.Context, rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadOffers(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// loadOffers populates Offers for all given bookings in one query.
// Prices come from the booking_offers snapshot, not the live offer
// row, so later re-pricing never changes an agreed total.
func (s *BookingStore) loadOffers(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(bookings))
	ids := make([]interface{}, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for i := range bookings {
		bookings[i].Offers = []model.Offer{}
		index[bookings[i].ID] = i
		ids = append(ids, bookings[i].ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT bo.booking_id, o.id, o.name, o.description, bo.price_cents, o.offer_type, o.is_active, o.created_at, o.updated_at
	      FROM booking_offers bo
	      JOIN offers o ON o.id = bo.offer_id
	      WHERE bo.booking_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY bo.booking_id, o.id`
	rows, err := s.q(ctx).QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookingID uint64
		var o model.Offer
		if err := rows.Scan(&bookingID, &o.ID, &o.Name, &o.Description, &o.PriceCents,
			&o.OfferType, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		if i, ok := index[bookingID]; ok {
			bookings[i].Offers = append(bookings[i].Offers, o)
		}
	}
	return rows.Err()
}

// InsertBooking writes a booking and its offer snapshot rows, then
// queries the row back to populate generated fields.
func (s *BookingStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	q := s.q(ctx)
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings (reference, user_id, room_id, check_in, check_out, guests_count, total_price_cents, status, special_requests, bonus_awarded)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.Reference, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.GuestsCount,
		b.TotalPriceCents, b.Status, b.SpecialRequests, b.BonusAwarded)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	if len(b.Offers) > 0 {
		query := "INSERT INTO booking_offers (booking_id, offer_id, price_cents) VALUES "
		args := make([]interface{}, 0, len(b.Offers)*3)
		for i, o := range b.Offers {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?)"
			args = append(args, b.ID, o.ID, o.PriceCents)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	row := q.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", b.ID)
	stored, err := scanBooking(row.Scan)
	if err != nil {
		return err
	}
	stored.Offers = b.Offers
	*b = stored
	return nil
}

// UpdateBooking rewrites the mutable booking columns.
func (s *BookingStore) UpdateBooking(ctx context.Context, b *model.Booking) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`UPDATE bookings SET check_in=?, check_out=?, guests_count=?, total_price_cents=?,
		 status=?, special_requests=?, bonus_awarded=? WHERE id=?`,
		b.CheckIn, b.CheckOut, b.GuestsCount, b.TotalPriceCents,
		b.Status, b.SpecialRequests, b.BonusAwarded, b.ID)
	return err
}

// DeleteBooking removes a booking; booking_offers rows cascade.
func (s *BookingStore) DeleteBooking(ctx context.Context, id uint64) error {
	res, err := s.q(ctx).ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// AddBonusPoints increments a user's loyalty balance.
func (s *BookingStore) AddBonusPoints(ctx context.Context, userID uint64, points int64) error {
	_, err := s.q(ctx).ExecContext(ctx,
		"UPDATE users SET bonus_points = bonus_points + ? WHERE id=?", points, userID)
	return err
}
