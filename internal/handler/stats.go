package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// StatsHandler serves the manager reporting endpoints: per-room
// occupancy right now, revenue by month and booking counts.
type StatsHandler struct {
	Engine *booking.Engine
	Stats  *repository.StatsRepo
}

func NewStatsHandler(engine *booking.Engine, stats *repository.StatsRepo) *StatsHandler {
	if engine == nil || stats == nil {
		panic("nil dependency passed to NewStatsHandler")
	}
	return &StatsHandler{Engine: engine, Stats: stats}
}

// Occupancy reports which rooms are occupied on a date (?as_of=YYYY-MM-DD,
// default today) plus the next upcoming stays for each room.
func (h *StatsHandler) Occupancy(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	asOf := booking.DateOnly(time.Now().UTC())
	if s := c.QueryParam("as_of"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "as_of must be YYYY-MM-DD"})
		}
		asOf = t
	}
	occ, err := h.Engine.Occupancy(c.Request().Context(), actor, asOf)
	if err != nil {
		return bookingError(c, err)
	}

	type roomOccPart struct {
		Room     roomResp      `json:"room"`
		Occupied bool          `json:"occupied"`
		Current  *bookingResp  `json:"current,omitempty"`
		Upcoming []bookingResp `json:"upcoming"`
	}
	out := make([]roomOccPart, 0, len(occ))
	occupied := 0
	for i := range occ {
		part := roomOccPart{
			Room:     toRoomResp(&occ[i].Room),
			Occupied: occ[i].Occupied,
			Upcoming: toBookingList(occ[i].Upcoming),
		}
		if occ[i].Current != nil {
			cur := toBookingResp(occ[i].Current)
			part.Current = &cur
		}
		if part.Occupied {
			occupied++
		}
		out = append(out, part)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     asOf.Format(booking.DateFormat),
		"total":    len(out),
		"occupied": occupied,
		"rooms":    out,
	})
}

// Revenue returns monthly totals for the last twelve months.
func (h *StatsHandler) Revenue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	months, err := h.Stats.RevenueByMonth(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revenue query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"months": months})
}

// Bookings returns booking counts grouped by status.
func (h *StatsHandler) Bookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Stats.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bookings query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"counts": counts})
}
