package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// OfferRepo provides CRUD operations for add-on offers and answers
// which offers a given room is eligible for.
type OfferRepo struct{ DB *sql.DB }

func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{DB: db} }

const offerColumns = "id,name,description,price_cents,offer_type,is_active,created_at,updated_at"

func collectOffers(rows *sql.Rows) ([]model.Offer, error) {
	defer rows.Close()
	offers := make([]model.Offer, 0)
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.PriceCents,
			&o.OfferType, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// Create inserts an offer and populates the generated ID.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO offers (name, description, price_cents, offer_type, is_active) VALUES (?,?,?,?,?)",
		o.Name, o.Description, o.PriceCents, o.OfferType, o.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID fetches a single offer.  Returns sql.ErrNoRows when missing.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (model.Offer, error) {
	var o model.Offer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+offerColumns+" FROM offers WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.Name, &o.Description, &o.PriceCents, &o.OfferType,
			&o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// List returns all offers ordered by id.
func (r *OfferRepo) List(ctx context.Context) ([]model.Offer, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+offerColumns+" FROM offers ORDER BY id")
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

// EligibleForRoom returns the active offers a room may attach:
// GLOBAL offers plus ROOM_SPECIFIC ones linked through room_offers.
func (r *OfferRepo) EligibleForRoom(ctx context.Context, roomID uint64) ([]model.Offer, error) {
	const q = `SELECT ` + offerColumns + ` FROM offers
	           WHERE is_active=1 AND (offer_type='GLOBAL'
	                 OR id IN (SELECT offer_id FROM room_offers WHERE room_id=?))
	           ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

// Update rewrites all mutable columns of an offer.
func (r *OfferRepo) Update(ctx context.Context, o *model.Offer) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE offers SET name=?, description=?, price_cents=?, offer_type=?, is_active=? WHERE id=?",
		o.Name, o.Description, o.PriceCents, o.OfferType, o.IsActive, o.ID)
	return err
}

// Delete removes an offer.  Eligibility links go with it; booking
// snapshots in booking_offers keep their copied price.
func (r *OfferRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM offers WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
