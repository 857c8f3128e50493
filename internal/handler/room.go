package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// RoomHandler serves the public room catalogue and the manager CRUD for
// rooms and their offer assignments.
type RoomHandler struct {
	Rooms  *repository.RoomRepo
	Offers *repository.OfferRepo
	Engine *booking.Engine
}

func NewRoomHandler(rooms *repository.RoomRepo, offers *repository.OfferRepo, engine *booking.Engine) *RoomHandler {
	if rooms == nil || offers == nil || engine == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Offers: offers, Engine: engine}
}

type roomReq struct {
	RoomNumber         string  `json:"room_number"`
	RoomType           string  `json:"room_type"`
	PricePerNightCents int64   `json:"price_per_night_cents"`
	Capacity           uint32  `json:"capacity"`
	Floor              *int32  `json:"floor"`
	Description        *string `json:"description"`
	Amenities          *string `json:"amenities"`
	ImageURL           *string `json:"image_url"`
	IsAvailable        *bool   `json:"is_available"`
}

type roomResp struct {
	ID                 uint64    `json:"id"`
	RoomNumber         string    `json:"room_number"`
	RoomType           string    `json:"room_type"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	Capacity           uint32    `json:"capacity"`
	Floor              *int32    `json:"floor,omitempty"`
	Description        *string   `json:"description,omitempty"`
	Amenities          *string   `json:"amenities,omitempty"`
	ImageURL           *string   `json:"image_url,omitempty"`
	IsAvailable        bool      `json:"is_available"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toRoomResp(r *model.Room) roomResp {
	return roomResp{
		ID:                 r.ID,
		RoomNumber:         r.RoomNumber,
		RoomType:           r.RoomType,
		PricePerNightCents: r.PricePerNightCents,
		Capacity:           r.Capacity,
		Floor:              r.Floor,
		Description:        r.Description,
		Amenities:          r.Amenities,
		ImageURL:           r.ImageURL,
		IsAvailable:        r.IsAvailable,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toRoomList(rooms []model.Room) []roomResp {
	out := make([]roomResp, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomResp(&rooms[i]))
	}
	return out
}

func (req *roomReq) validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.RoomNumber) == "" {
		problems["room_number"] = "required"
	}
	if strings.TrimSpace(req.RoomType) == "" {
		problems["room_type"] = "required"
	}
	if req.PricePerNightCents <= 0 {
		problems["price_per_night_cents"] = "must be positive"
	}
	if req.Capacity == 0 {
		problems["capacity"] = "must be at least 1"
	}
	return problems
}

// List returns rooms; ?available=true narrows to bookable ones.
func (h *RoomHandler) List(c echo.Context) error {
	availableOnly := c.QueryParam("available") == "true"
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx, availableOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": toRoomList(rooms)})
}

// Get returns one room.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(&room))
}

// Availability answers whether the room is free for a date range.
func (h *RoomHandler) Availability(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}
	av, err := h.Engine.CheckAvailability(c.Request().Context(), id, checkIn, checkOut, 0)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": av.Available,
		"conflicts": toBookingList(av.Conflicts),
	})
}

// BookedDates returns the merged occupied ranges of a room inside a window.
// Defaults to the next 365 days when the window is not given.
func (h *RoomHandler) BookedDates(c echo.Context) error {
	id, err := paramID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	from := booking.DateOnly(time.Now().UTC())
	to := from.AddDate(0, 0, 365)
	if s := c.QueryParam("start_date"); s != "" {
		if from, err = parseDate(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
	}
	if s := c.QueryParam("end_date"); s != "" {
		if to, err = parseDate(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
	}
	ranges, err := h.Engine.BookedDates(c.Request().Context(), id, from, to)
	if err != nil {
		return bookingError(c, err)
	}
	type rangePart struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	out := make([]rangePart, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, rangePart{Start: r.Start.Format(booking.DateFormat), End: r.End.Format(booking.DateFormat)})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "booked": out})
}

// EligibleOffers lists the active offers bookable with a room.
func (h *RoomHandler) EligibleOffers(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	offers, err := h.Offers.EligibleForRoom(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list offers failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": toOfferList(offers)})
}

// ----- manager endpoints -----

// Create adds a room.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if problems := req.validate(); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": problems})
	}
	room := model.Room{
		RoomNumber:         strings.TrimSpace(req.RoomNumber),
		RoomType:           strings.TrimSpace(req.RoomType),
		PricePerNightCents: req.PricePerNightCents,
		Capacity:           req.Capacity,
		Floor:              req.Floor,
		Description:        req.Description,
		Amenities:          req.Amenities,
		ImageURL:           req.ImageURL,
		IsAvailable:        true,
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, &room); err != nil {
		if err == repository.ErrRoomNumberExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, toRoomResp(&room))
}

// Update rewrites a room's fields.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if problems := req.validate(); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": problems})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	room.RoomNumber = strings.TrimSpace(req.RoomNumber)
	room.RoomType = strings.TrimSpace(req.RoomType)
	room.PricePerNightCents = req.PricePerNightCents
	room.Capacity = req.Capacity
	room.Floor = req.Floor
	room.Description = req.Description
	room.Amenities = req.Amenities
	room.ImageURL = req.ImageURL
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if err := h.Rooms.Update(ctx, &room); err != nil {
		if err == repository.ErrRoomNumberExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(&room))
}

// Delete removes a room without active bookings.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrInUse:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has active bookings"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type setOffersReq struct {
	OfferIDs []uint64 `json:"offer_ids"`
}

// SetOffers replaces the room-specific offer assignment of a room.
func (h *RoomHandler) SetOffers(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setOffersReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	for _, oid := range req.OfferIDs {
		o, err := h.Offers.GetByID(ctx, oid)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown offer", "offer_id": oid})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load offer failed"})
		}
		if o.OfferType != model.OfferTypeRoomSpecific {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "only room-specific offers can be assigned", "offer_id": oid})
		}
	}
	if err := h.Rooms.SetOffers(ctx, id, req.OfferIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign offers failed"})
	}
	offers, err := h.Offers.EligibleForRoom(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list offers failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "offers": toOfferList(offers)})
}
