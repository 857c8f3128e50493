package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Rooms are managed by
// staff; guests only read them.  Availability of a room for a date
// range is a booking concern and lives in the booking store, not
// here.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id,room_number,room_type,price_per_night_cents,capacity,floor,description,amenities,image_url,is_available,created_at,updated_at"

func scanRoom(scan func(dest ...any) error) (model.Room, error) {
	var r model.Room
	var floor sql.NullInt32
	var description, amenities, imageURL sql.NullString
	err := scan(&r.ID, &r.RoomNumber, &r.RoomType, &r.PricePerNightCents, &r.Capacity,
		&floor, &description, &amenities, &imageURL, &r.IsAvailable, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if floor.Valid {
		f := floor.Int32
		r.Floor = &f
	}
	if description.Valid {
		d := description.String
		r.Description = &d
	}
	if amenities.Valid {
		a := amenities.String
		r.Amenities = &a
	}
	if imageURL.Valid {
		u := imageURL.String
		r.ImageURL = &u
	}
	return r, nil
}

// Create inserts a room and populates the generated ID.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rooms (room_number, room_type, price_per_night_cents, capacity, floor, description, amenities, image_url, is_available)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		room.RoomNumber, room.RoomType, room.PricePerNightCents, room.Capacity,
		room.Floor, room.Description, room.Amenities, room.ImageURL, room.IsAvailable)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoomNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID fetches a room.  Returns sql.ErrNoRows when missing.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id)
	return scanRoom(row.Scan)
}

// List returns all rooms ordered by room number.  The availableOnly
// flag restricts the result to rooms that accept new bookings, used
// by the public browse endpoint.
func (r *RoomRepo) List(ctx context.Context, availableOnly bool) ([]model.Room, error) {
	q := "SELECT " + roomColumns + " FROM rooms"
	if availableOnly {
		q += " WHERE is_available=1"
	}
	q += " ORDER BY room_number"
	rows, err := r.DB.QueryContext(ctx, q)
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

// Update rewrites all mutable columns of a room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE rooms SET room_number=?, room_type=?, price_per_night_cents=?, capacity=?,
		 floor=?, description=?, amenities=?, image_url=?, is_available=? WHERE id=?`,
		room.RoomNumber, room.RoomType, room.PricePerNightCents, room.Capacity,
		room.Floor, room.Description, room.Amenities, room.ImageURL, room.IsAvailable, room.ID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrRoomNumberExists
	}
	return err
}

// Delete removes a room unless non-cancelled bookings still reference
// it, in which case ErrInUse is returned.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE room_id=? AND status IN ('PENDING','CONFIRMED')",
		id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetOffers replaces the set of ROOM_SPECIFIC offers linked to a
// room.  The swap happens in a transaction so readers never observe a
// partially attached set.
func (r *RoomRepo) SetOffers(ctx context.Context, roomID uint64, offerIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM room_offers WHERE room_id=?", roomID); err != nil {
		return err
	}
	if len(offerIDs) > 0 {
		query := "INSERT INTO room_offers (room_id, offer_id) VALUES "
		args := make([]interface{}, 0, len(offerIDs)*2)
		for i, id := range offerIDs {
			if i > 0 {
				query += ","
			}
			query += "(?,?)"
			args = append(args, roomID, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
