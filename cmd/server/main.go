package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/ev-charging-reservation/internal/config"
	"github.com/iliyamo/ev-charging-reservation/internal/database"
	"github.com/iliyamo/ev-charging-reservation/internal/handler"
	"github.com/iliyamo/ev-charging-reservation/internal/queue"
	"github.com/iliyamo/ev-charging-reservation/internal/repository"
	"github.com/iliyamo/ev-charging-reservation/internal/router"
	"github.com/iliyamo/ev-charging-reservation/internal/service"
)

func main() {
	// Load .env if present; real environments set the variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Repositories (storage gateway)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	negotiationRepo := repository.NewNegotiationRepo(db, bookingRepo)

	// Core services
	bookingSvc := service.NewBookingService(bookingRepo)
	negotiationSvc := service.NewNegotiationService(negotiationRepo)
	rewardPolicy := service.LinearRate(cfg.RewardRate)

	// HTTP handlers
	authH := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	bookingH := handler.NewBookingHandler(bookingSvc)
	negotiationH := handler.NewNegotiationHandler(negotiationSvc, rewardPolicy)

	// Redis is optional; a nil client disables rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, bookingH)
	router.RegisterBooking(e, bookingH, negotiationH, cfg.JWTSecret, rlCfg, rdb)

	// Background consumer writes domain events to logs/booking.log and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
