package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/handler"    // import the handlers that implement business logic
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints require a valid access token.  The register and
// login endpoints are rate limited per client IP to slow down credential
// stuffing; everything else relies on the token check alone.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, secret string, users *repository.UserRepo, rdb *redis.Client, rl config.RateLimitConfig) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login).  Each of these
	// handlers is responsible for issuing tokens.
	g := e.Group("/v1/auth", middleware.RateLimit(rdb, rl))
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the Auth middleware
	// before being invoked, which also rejects tokens of deactivated users.
	auth := e.Group("/v1/auth", middleware.Auth(secret, users))
	// Register a GET endpoint at /v1/auth/me that returns the authenticated user.
	auth.GET("/me", a.Me)
	// Register a PUT endpoint at /v1/auth/profile to update name, email or
	// password.  Password changes require the current password in the body.
	auth.PUT("/profile", a.UpdateProfile)

	// Account deactivation is an administrative action: it revokes access for
	// the target user on their next request.
	admin := e.Group("/v1", middleware.Auth(secret, users), middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/users/:id", a.Deactivate)
}

// RegisterPublic registers the unauthenticated browse endpoints.  The vehicle
// catalog is readable by guests; successful responses are served from the
// Redis response cache when one is configured.
func RegisterPublic(e *echo.Echo, v *handler.VehicleHandler, rdb *redis.Client, cache config.CacheConfig) {
	g := e.Group("/v1", middleware.ResponseCache(rdb, cache))
	// Browse the vehicle catalog with filters and pagination.
	g.GET("/vehicles", v.List)
	// Vehicle details by id.
	g.GET("/vehicles/:id", v.Get)
}
