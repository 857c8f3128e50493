package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBookingErrorMapping(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c, rec := newTestContext(t)
		require.NoError(t, bookingError(c, booking.ErrNotFound))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		c, rec := newTestContext(t)
		require.NoError(t, bookingError(c, booking.ErrForbidden))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("room closed", func(t *testing.T) {
		c, rec := newTestContext(t)
		require.NoError(t, bookingError(c, booking.ErrRoomUnavailable))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("date conflict carries the blocking bookings", func(t *testing.T) {
		c, rec := newTestContext(t)
		conflict := &booking.ConflictError{Conflicts: []model.Booking{{
			ID:       3,
			CheckIn:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
			Status:   booking.StatusConfirmed,
		}}}
		require.NoError(t, bookingError(c, conflict))
		assert.Equal(t, http.StatusConflict, rec.Code)

		body := decodeBody(t, rec)
		conflicts, ok := body["conflicts"].([]interface{})
		require.True(t, ok)
		require.Len(t, conflicts, 1)
		first := conflicts[0].(map[string]interface{})
		assert.Equal(t, "2026-02-01", first["check_in_date"])
		assert.Equal(t, "2026-02-04", first["check_out_date"])
	})

	t.Run("illegal transition", func(t *testing.T) {
		c, rec := newTestContext(t)
		te := &booking.TransitionError{From: booking.StatusCancelled, To: booking.StatusConfirmed}
		require.NoError(t, bookingError(c, te))
		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], "invalid state transition")
	})

	t.Run("unexpected error is a 500", func(t *testing.T) {
		c, rec := newTestContext(t)
		require.NoError(t, bookingError(c, errors.New("boom")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// Clients send check_in_date / check_out_date; the shorter key names
// must not bind.
func TestBookingRequestDateFields(t *testing.T) {
	var create createBookingReq
	require.NoError(t, json.Unmarshal([]byte(`{
		"room_id": 7,
		"check_in_date": "2026-02-01",
		"check_out_date": "2026-02-04",
		"guests_count": 2,
		"offer_ids": [2]
	}`), &create))
	assert.Equal(t, "2026-02-01", create.CheckIn)
	assert.Equal(t, "2026-02-04", create.CheckOut)

	var legacy createBookingReq
	require.NoError(t, json.Unmarshal([]byte(`{"check_in": "2026-02-01", "check_out": "2026-02-04"}`), &legacy))
	assert.Empty(t, legacy.CheckIn)
	assert.Empty(t, legacy.CheckOut)

	var update updateBookingReq
	require.NoError(t, json.Unmarshal([]byte(`{"check_in_date": "2026-03-01", "check_out_date": "2026-03-05"}`), &update))
	require.NotNil(t, update.CheckIn)
	require.NotNil(t, update.CheckOut)
	assert.Equal(t, "2026-03-01", *update.CheckIn)
	assert.Equal(t, "2026-03-05", *update.CheckOut)
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("01.02.2026")
	assert.Error(t, err)
	_, err = parseDate("")
	assert.Error(t, err)
}

func TestActorFromContext(t *testing.T) {
	c, _ := newTestContext(t)
	c.Set("user_id", float64(12)) // JWT numbers decode to float64
	c.Set("role", booking.RoleManager)

	actor, ok := actorFromContext(c)
	require.True(t, ok)
	assert.Equal(t, uint64(12), actor.UserID)
	assert.Equal(t, booking.RoleManager, actor.Role)

	c2, _ := newTestContext(t)
	_, ok = actorFromContext(c2)
	assert.False(t, ok)

	c3, _ := newTestContext(t)
	c3.Set("user_id", "34")
	c3.Set("role", booking.RoleUser)
	actor, ok = actorFromContext(c3)
	require.True(t, ok)
	assert.Equal(t, uint64(34), actor.UserID)
}
