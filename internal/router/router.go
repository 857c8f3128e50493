package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/hotel-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check used by load balancers and the
// Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and the two refresh variants.  Each handler generates or exchanges
	// tokens itself.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// refresh token in the body or a bearer token in the header and
	// revokes the matching sessions.
	g.POST("/logout", a.Logout)

	// Protected profile endpoint.  JWTAuth validates the bearer token and
	// RequireRole rejects unknown roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(booking.RoleUser, booking.RoleManager, booking.RoleAdmin))
	auth.GET("/me", a.Me)

	// Alias kept at the top level so clients can call either
	// /v1/auth/logout or /v1/logout with a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints: the room
// catalogue, availability and the booked-dates calendar.  Guests use these
// to pick a room before registering.  The optional cache middleware keeps
// hot catalogue responses in Redis.
func RegisterPublic(e *echo.Echo, rooms *handler.RoomHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Room catalogue; use ?available=true to hide closed rooms.
	g.GET("/rooms", rooms.List)
	g.GET("/rooms/:id", rooms.Get)
	// Availability of one room for a date range (?check_in&check_out).
	g.GET("/rooms/:id/availability", rooms.Availability)
	// Offers bookable together with a room.
	g.GET("/rooms/:id/offers", rooms.EligibleOffers)
	// Occupied date ranges of a room, merged, inside an optional window.
	g.GET("/bookings/room/:room_id/booked-dates", rooms.BookedDates)
}

// RegisterBookings registers the booking lifecycle for authenticated guests.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(booking.RoleUser, booking.RoleManager, booking.RoleAdmin))
	g.POST("", b.Create)
	g.GET("/my", b.My)
	g.GET("/:id", b.Get)
	g.PUT("/:id", b.Update)
	g.POST("/:id/cancel", b.Cancel)
	g.POST("/:id/extend", b.Extend)
}

// RegisterManager registers staff endpoints: the full booking list and its
// state transitions, room and offer administration, and reporting.
func RegisterManager(e *echo.Echo, b *handler.BookingHandler, rooms *handler.RoomHandler, offers *handler.OfferHandler, stats *handler.StatsHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(booking.RoleManager, booking.RoleAdmin))

	// Booking administration.
	g.GET("/bookings/all", b.All)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.POST("/bookings/:id/decline", b.Decline)
	g.POST("/bookings/:id/complete", b.Complete)
	g.DELETE("/bookings/:id", b.Delete)

	// Room administration.
	g.POST("/rooms", rooms.Create)
	g.PUT("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)
	g.PUT("/rooms/:id/offers", rooms.SetOffers)

	// Offer administration.
	g.GET("/offers", offers.List)
	g.GET("/offers/:id", offers.Get)
	g.POST("/offers", offers.Create)
	g.PUT("/offers/:id", offers.Update)
	g.DELETE("/offers/:id", offers.Delete)

	// Reporting.
	g.GET("/stats/occupancy", stats.Occupancy)
	g.GET("/stats/revenue", stats.Revenue)
	g.GET("/stats/bookings", stats.Bookings)
}

// RegisterAdmin registers user administration, restricted to admins.
func RegisterAdmin(e *echo.Echo, users *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(booking.RoleAdmin))
	g.GET("", users.List)
	g.PUT("/:id/role", users.UpdateRole)
}
