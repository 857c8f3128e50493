package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
	q "github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All decisions
// live in the engine; the handler parses requests, maps typed engine
// errors to status codes and publishes broker events after commits.
type BookingHandler struct {
	Engine *booking.Engine
	Rooms  *repository.RoomRepo
}

func NewBookingHandler(engine *booking.Engine, rooms *repository.RoomRepo) *BookingHandler {
	if engine == nil || rooms == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Rooms: rooms}
}

// ----- DTOs -----

type createBookingReq struct {
	RoomID          uint64   `json:"room_id"`
	CheckIn         string   `json:"check_in_date"`  // YYYY-MM-DD
	CheckOut        string   `json:"check_out_date"` // YYYY-MM-DD
	GuestsCount     uint32   `json:"guests_count"`
	SpecialRequests *string  `json:"special_requests"`
	OfferIDs        []uint64 `json:"offer_ids"`
}

type updateBookingReq struct {
	GuestsCount     *uint32 `json:"guests_count"`
	SpecialRequests *string `json:"special_requests"`
	CheckIn         *string `json:"check_in_date"`
	CheckOut        *string `json:"check_out_date"`
}

type extendBookingReq struct {
	Days int `json:"days"`
}

type bookingOfferPart struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type bookingResp struct {
	ID              uint64             `json:"id"`
	Reference       string             `json:"reference"`
	UserID          uint64             `json:"user_id"`
	RoomID          uint64             `json:"room_id"`
	CheckIn         string             `json:"check_in_date"`
	CheckOut        string             `json:"check_out_date"`
	GuestsCount     uint32             `json:"guests_count"`
	TotalPriceCents int64              `json:"total_price_cents"`
	Status          string             `json:"status"`
	SpecialRequests *string            `json:"special_requests,omitempty"`
	Offers          []bookingOfferPart `json:"offers"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	offers := make([]bookingOfferPart, 0, len(b.Offers))
	for _, o := range b.Offers {
		offers = append(offers, bookingOfferPart{ID: o.ID, Name: o.Name, PriceCents: o.PriceCents})
	}
	return bookingResp{
		ID:              b.ID,
		Reference:       b.Reference,
		UserID:          b.UserID,
		RoomID:          b.RoomID,
		CheckIn:         b.CheckIn.Format(booking.DateFormat),
		CheckOut:        b.CheckOut.Format(booking.DateFormat),
		GuestsCount:     b.GuestsCount,
		TotalPriceCents: b.TotalPriceCents,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
		Offers:          offers,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toBookingList(bs []model.Booking) []bookingResp {
	out := make([]bookingResp, 0, len(bs))
	for i := range bs {
		out = append(out, toBookingResp(&bs[i]))
	}
	return out
}

// bookingError translates engine errors into HTTP responses.
func bookingError(c echo.Context, err error) error {
	if ie := booking.IsInputError(err); ie != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ie.Fields()})
	}
	if ce := booking.IsConflictError(err); ce != nil {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "room is not available for the requested dates",
			"conflicts": toBookingList(ce.Conflicts),
		})
	}
	if te := booking.IsTransitionError(err); te != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": te.Error()})
	}
	switch err {
	case booking.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case booking.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case booking.ErrRoomUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is not open for booking"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(booking.DateFormat, s, time.UTC)
}

// Create books a room for the authenticated user.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}

	b, err := h.Engine.Create(c.Request().Context(), actor, booking.CreateInput{
		RoomID:          req.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestsCount:     req.GuestsCount,
		SpecialRequests: req.SpecialRequests,
		OfferIDs:        req.OfferIDs,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// My lists the caller's bookings.
func (h *BookingHandler) My(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bs, err := h.Engine.ListMine(c.Request().Context(), actor)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": toBookingList(bs)})
}

// Get returns a single booking visible to the caller.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Engine.Get(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Update changes guests, requests, or (for staff) the dates of a booking.
func (h *BookingHandler) Update(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := booking.UpdateInput{
		GuestsCount:     req.GuestsCount,
		SpecialRequests: req.SpecialRequests,
	}
	if req.CheckIn != nil {
		t, err := parseDate(*req.CheckIn)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
		}
		in.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, err := parseDate(*req.CheckOut)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
		}
		in.CheckOut = &t
	}
	b, err := h.Engine.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel cancels a booking (owner or staff).
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Engine.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Extend pushes the check-out date of the caller's own booking.
func (h *BookingHandler) Extend(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req extendBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b, err := h.Engine.Extend(c.Request().Context(), actor, id, req.Days)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// ----- manager endpoints -----

// All lists every booking (staff only).
func (h *BookingHandler) All(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bs, err := h.Engine.ListAll(c.Request().Context(), actor)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": toBookingList(bs)})
}

// Confirm moves a pending booking to CONFIRMED and emits a broker event.
func (h *BookingHandler) Confirm(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Engine.Confirm(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	h.publishConfirmed(b)
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Decline rejects a pending booking.
func (h *BookingHandler) Decline(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Engine.Decline(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Complete finishes a stay, awards loyalty points and emits a broker event.
func (h *BookingHandler) Complete(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Engine.Complete(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	h.publishCompleted(b)
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Delete removes a booking entirely (staff only).
func (h *BookingHandler) Delete(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.Delete(c.Request().Context(), actor, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishConfirmed emits the booking.confirmed event in the background.
// Broker failures never affect the HTTP response.
func (h *BookingHandler) publishConfirmed(b *model.Booking) {
	booked := *b
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ev := q.BookingConfirmedEvent{
			BookingID:       booked.ID,
			Reference:       booked.Reference,
			UserID:          booked.UserID,
			RoomID:          booked.RoomID,
			CheckIn:         booked.CheckIn.Format(booking.DateFormat),
			CheckOut:        booked.CheckOut.Format(booking.DateFormat),
			GuestsCount:     booked.GuestsCount,
			TotalPriceCents: booked.TotalPriceCents,
			ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if room, err := h.Rooms.GetByID(ctx, booked.RoomID); err == nil {
			ev.RoomNumber = room.RoomNumber
			ev.RoomType = room.RoomType
		}
		_ = service.PublishBookingConfirmed(ctx, ev)
	}()
}

// publishCompleted emits the booking.completed event in the background.
func (h *BookingHandler) publishCompleted(b *model.Booking) {
	booked := *b
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ev := q.BookingCompletedEvent{
			BookingID:       booked.ID,
			Reference:       booked.Reference,
			UserID:          booked.UserID,
			RoomID:          booked.RoomID,
			CheckIn:         booked.CheckIn.Format(booking.DateFormat),
			CheckOut:        booked.CheckOut.Format(booking.DateFormat),
			TotalPriceCents: booked.TotalPriceCents,
			BonusPoints:     booking.BonusPoints(booked.TotalPriceCents),
			CompletedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if room, err := h.Rooms.GetByID(ctx, booked.RoomID); err == nil {
			ev.RoomNumber = room.RoomNumber
		}
		_ = service.PublishBookingCompleted(ctx, ev)
	}()
}
