package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/policy"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
)

// VehicleHandler serves the vehicle inventory endpoints. Reads are
// public; mutations require authentication and, except for create, an
// ownership check.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(v *repository.VehicleRepo) *VehicleHandler {
	if v == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: v}
}

// vehicleReq is the create payload. Numeric required fields are
// pointers so a missing value can be told apart from a zero.
type vehicleReq struct {
	Brand     string                `json:"brand"`
	Model     string                `json:"model"`
	Year      *int                  `json:"year"`
	Price     *float64              `json:"price"`
	Color     string                `json:"color"`
	Status    string                `json:"status"`
	Details   *model.VehicleDetails `json:"details"`
	Photos    []model.Photo         `json:"photos"`
	Documents []model.Document      `json:"documents"`
}

// vehiclePatch lists exactly the fields an update may change. Fields
// left out of the request keep their stored values; id and createdBy
// are not reachable from here at all.
type vehiclePatch struct {
	Brand     *string               `json:"brand"`
	Model     *string               `json:"model"`
	Year      *int                  `json:"year"`
	Price     *float64              `json:"price"`
	Color     *string               `json:"color"`
	Status    *string               `json:"status"`
	Details   *model.VehicleDetails `json:"details"`
	Documents *[]model.Document     `json:"documents"`
}

func (p vehiclePatch) apply(v *model.Vehicle) {
	if p.Brand != nil {
		v.Brand = strings.TrimSpace(*p.Brand)
	}
	if p.Model != nil {
		v.Model = strings.TrimSpace(*p.Model)
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.Color != nil {
		v.Color = strings.TrimSpace(*p.Color)
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Details != nil {
		v.Details = p.Details
	}
	if p.Documents != nil {
		v.Documents = *p.Documents
	}
}

// validateVehicle checks the merged record and reports every violation.
func validateVehicle(v model.Vehicle) violations {
	var errs violations
	if v.Brand == "" {
		errs.add("brand", "brand is required")
	}
	if v.Model == "" {
		errs.add("model", "model is required")
	}
	if v.Year < 1900 {
		errs.add("year", "year must be 1900 or later")
	}
	if v.Price < 0 {
		errs.add("price", "price must be zero or greater")
	}
	if v.Color == "" {
		errs.add("color", "color is required")
	}
	if !model.Contains(model.VehicleStatuses, v.Status) {
		errs.add("status", "invalid status")
	}
	mains := 0
	for _, p := range v.Photos {
		if p.Main {
			mains++
		}
	}
	if mains > 1 {
		errs.add("photos", "at most one photo may be main")
	}
	return errs
}

// List handles GET /v1/vehicles with filters and pagination. Public.
func (h *VehicleHandler) List(c echo.Context) error {
	q := repository.VehicleQuery{
		Status: c.QueryParam("status"),
		Brand:  c.QueryParam("brand"),
		Model:  c.QueryParam("model"),
		Page:   pageFrom(c),
	}
	if s := c.QueryParam("year"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			q.Year = &n
		}
	}
	if s := c.QueryParam("minPrice"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			q.MinPrice = &f
		}
	}
	if s := c.QueryParam("maxPrice"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			q.MaxPrice = &f
		}
	}

	items, total, err := h.Vehicles.Search(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("vehicle search: %v", err)
		return internalErr(c, "could not list vehicles", err)
	}
	return c.JSON(http.StatusOK, newListResponse(items, total, q.Page))
}

// Get handles GET /v1/vehicles/:id. Public.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	v, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not load vehicle", err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create handles POST /v1/vehicles. Any authenticated identity may
// create; createdBy is fixed to the actor and never changes afterwards.
func (h *VehicleHandler) Create(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	v := model.Vehicle{
		Brand:     strings.TrimSpace(req.Brand),
		Model:     strings.TrimSpace(req.Model),
		Color:     strings.TrimSpace(req.Color),
		Status:    req.Status,
		Details:   req.Details,
		Photos:    req.Photos,
		Documents: req.Documents,
		CreatedBy: ident.ID,
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if v.Status == "" {
		v.Status = model.VehicleAvailable
	}
	if bad, err := validateVehicle(v).respond(c); bad {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		c.Logger().Errorf("vehicle create: %v", err)
		return internalErr(c, "could not create vehicle", err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update handles PUT /v1/vehicles/:id with partial update semantics.
// Existence is checked before ownership so a 404 wins over a 403.
func (h *VehicleHandler) Update(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	var patch vehiclePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not load vehicle", err)
	}
	if !policy.CanMutate(ident, v.CreatedBy) {
		return forbidden(c)
	}

	patch.apply(&v)
	if bad, err := validateVehicle(v).respond(c); bad {
		return err
	}
	if err := h.Vehicles.Update(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		c.Logger().Errorf("vehicle update: %v", err)
		return internalErr(c, "could not update vehicle", err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /v1/vehicles/:id. Historical sales keep their
// reference; nothing cascades.
func (h *VehicleHandler) Delete(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not load vehicle", err)
	}
	if !policy.CanMutate(ident, v.CreatedBy) {
		return forbidden(c)
	}

	if err := h.Vehicles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not delete vehicle", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle removed"})
}
