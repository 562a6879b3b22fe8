package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/venue-ticketing/internal/config"
    "github.com/iliyamo/venue-ticketing/internal/handler"
    "github.com/iliyamo/venue-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers and monitoring systems use this to verify that the
    // service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the administrative login endpoint.  The handler
// verifies the configured credentials and issues the ADMIN access token
// consumed by the routes in RegisterAdmin.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    e.POST("/v1/auth/login", a.Login)
}

// RegisterViewer registers the endpoints open to sales connections and
// spectators: project snapshots, the live websocket feed, and the seat
// lifecycle operations.  Lock, unlock and issue carry the opaque holder
// identity in the X-Holder-ID header and are rate limited per holder
// through Redis; when Redis is unavailable the limiter degrades to a
// pass-through.
func RegisterViewer(e *echo.Echo, p *handler.ProjectHandler, r *handler.ReservationHandler, ws *handler.WSHandler, rdb *redis.Client) {
    e.GET("/v1/projects", p.List)
    e.GET("/v1/projects/:id", p.Get)
    e.GET("/v1/projects/:id/ws", ws.Serve)

    // Disconnect cleanup for transports that cannot signal it over the
    // websocket close (e.g. a proxy that lost the client).
    e.DELETE("/v1/holders/:holder", r.ReleaseHolder)

    seats := e.Group("/v1/projects/:id/seats")
    seats.Use(middleware.RequireHolder())
    seats.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    seats.POST("/lock", r.Lock)
    seats.POST("/unlock", r.Unlock)
    seats.POST("/issue", r.Issue)
}

// RegisterAdmin registers the elevated-privilege surface.  Every route
// requires a valid access token with the ADMIN role: project lifecycle,
// seat enabling and disabling, administrative overrides, check-in,
// relabeling and ticketing reconfiguration.
func RegisterAdmin(e *echo.Echo, p *handler.ProjectHandler, jwtSecret string) {
    admin := e.Group("/v1")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole("ADMIN"))

    admin.POST("/projects", p.Create)
    admin.DELETE("/projects/:id", p.Delete)
    admin.POST("/projects/:id/seats/enable", p.EnableSeats)
    admin.POST("/projects/:id/seats/disable", p.DisableSeats)
    admin.POST("/projects/:id/seats/override", p.Override)
    admin.POST("/projects/:id/seats/checkin", p.CheckIn)
    admin.PUT("/projects/:id/ticketing", p.Ticketing)
    admin.POST("/projects/:id/labels", p.Relabel)
}
