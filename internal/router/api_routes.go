package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/handler"    // domain handlers
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/middleware" // JWT auth middleware
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
)

// RegisterAPI registers the authenticated domain endpoints under /v1.
// All routes require a valid JWT for an active user; update and delete
// handlers additionally enforce the admin-or-creator ownership check
// themselves, after confirming the record exists.
func RegisterAPI(e *echo.Echo, v *handler.VehicleHandler, s *handler.SaleHandler, t *handler.TransactionHandler, secret string, users *repository.UserRepo) {
	// Attach the middleware at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.Auth(secret, users),
	)

	// ---- Vehicles ----
	// NOTE: Listing and fetching vehicles is handled by the public browse API
	// (GET /v1/vehicles, GET /v1/vehicles/:id); only mutations live here.
	g.POST("/vehicles", v.Create)
	g.PUT("/vehicles/:id", v.Update)
	g.DELETE("/vehicles/:id", v.Delete)

	// ---- Vehicle photos ----
	g.POST("/vehicles/:id/photos", v.AddPhotos)
	g.PUT("/vehicles/:id/photos/:photoId/main", v.SetMainPhoto)
	g.DELETE("/vehicles/:id/photos/:photoId", v.RemovePhoto)

	// ---- Sales ----
	g.GET("/sales", s.List)
	g.GET("/sales/:id", s.Get)
	g.POST("/sales", s.Create)
	g.PUT("/sales/:id", s.Update)
	g.DELETE("/sales/:id", s.Delete)

	// ---- Transactions ----
	// The report route is registered before /:id so "report" is never
	// taken for a transaction id.
	g.GET("/transactions/report", t.Report)
	g.GET("/transactions", t.List)
	g.GET("/transactions/:id", t.Get)
	g.POST("/transactions", t.Create)
	g.PUT("/transactions/:id", t.Update)
	g.DELETE("/transactions/:id", t.Delete)
}
