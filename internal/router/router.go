package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ev-charging-reservation/internal/config"
	"github.com/iliyamo/ev-charging-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/ev-charging-reservation/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint is used by load balancers and monitoring systems
	// to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes.  Unauthenticated
// operations live under /v1/auth; the protected /v1/me endpoint
// demonstrates the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer token;
	// the latter revokes every session of the user.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  Guests can
// inspect a station's schedule and check slot availability before
// registering.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler) {
	e.GET("/v1/stations/:id/bookings", b.ListStationBookings)
	e.GET("/v1/stations/:id/availability", b.GetAvailability)
}

// RegisterBooking registers the authenticated booking and negotiation
// endpoints under /v1.  All routes require a valid access token; the
// Redis-backed token bucket throttles abusive clients and degrades to a
// no-op when Redis is unavailable.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, n *handler.NegotiationHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))

	g.POST("/bookings", b.CreateBooking)
	g.GET("/my-bookings", b.ListMyBookings)

	g.GET("/reward-quote", n.QuoteReward)
	g.POST("/negotiations", n.CreateNegotiation)
	g.GET("/negotiations/:id", n.GetNegotiation)
	g.POST("/negotiations/:id/respond", n.RespondNegotiation)
}
