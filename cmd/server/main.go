package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hotel-reservation/internal/booking"    // booking engine
	"github.com/iliyamo/hotel-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/hotel-reservation/internal/database"   // MySQL connector
	"github.com/iliyamo/hotel-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-reservation/internal/middleware" // shared middleware
	"github.com/iliyamo/hotel-reservation/internal/queue"      // broker consumer
	"github.com/iliyamo/hotel-reservation/internal/repository" // data access layer
	"github.com/iliyamo/hotel-reservation/internal/router"     // Internal router setup
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Connect to MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// disables both features instead of failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	offers := repository.NewOfferRepo(db)
	stats := repository.NewStatsRepo(db)
	store := repository.NewBookingStore(db)

	// The engine owns every booking decision: availability, pricing,
	// the state machine and loyalty points.
	engine := booking.NewEngine(store, booking.Config{
		ExtendMaxDays:       cfg.ExtendMaxDays,
		LongStayMinNights:   cfg.LongStayMinNights,
		LongStayDiscountPct: cfg.LongStayDiscountPct,
	})

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	bookingH := handler.NewBookingHandler(engine, rooms)
	roomH := handler.NewRoomHandler(rooms, offers, engine)
	offerH := handler.NewOfferHandler(offers)
	userH := handler.NewUserHandler(users)
	statsH := handler.NewStatsHandler(engine, stats)

	e := echo.New() // Create Echo instance
	e.Use(middleware.Metrics())
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e) // health check and metrics
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, roomH, cache)
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)
	router.RegisterManager(e, bookingH, roomH, offerH, statsH, cfg.JWTSecret)
	router.RegisterAdmin(e, userH, cfg.JWTSecret)

	// Consume confirmation and completion events in the background and
	// append them to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
