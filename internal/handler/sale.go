package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/policy"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/queue"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/service"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

// SaleHandler serves the sale endpoints. Everything here requires
// authentication; update and delete additionally pass the ownership
// policy. A sale persisted as completed marks its vehicle Sold (the
// repository does both writes in one transaction) and publishes a
// sale.completed event for downstream consumers.
type SaleHandler struct {
	Sales *repository.SaleRepo
}

func NewSaleHandler(s *repository.SaleRepo) *SaleHandler {
	if s == nil {
		panic("nil repository passed to NewSaleHandler")
	}
	return &SaleHandler{Sales: s}
}

type customerReq struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type saleReq struct {
	VehicleID     string           `json:"vehicleId"`
	SalePrice     *float64         `json:"salePrice"`
	Customer      customerReq      `json:"customer"`
	PaymentMethod string           `json:"paymentMethod"`
	Date          *time.Time       `json:"date"`
	Notes         string           `json:"notes"`
	Status        string           `json:"status"`
	Documents     []model.Document `json:"documents"`
}

// salePatch lists the updatable fields; omitted ones keep their stored
// values. createdBy and id are not part of the structure.
type salePatch struct {
	VehicleID     *string           `json:"vehicleId"`
	SalePrice     *float64          `json:"salePrice"`
	Customer      *customerReq      `json:"customer"`
	PaymentMethod *string           `json:"paymentMethod"`
	Date          *time.Time        `json:"date"`
	Notes         *string           `json:"notes"`
	Status        *string           `json:"status"`
	Documents     *[]model.Document `json:"documents"`
}

func (p salePatch) apply(s *model.Sale) {
	if p.VehicleID != nil {
		s.VehicleID = *p.VehicleID
	}
	if p.SalePrice != nil {
		s.SalePrice = *p.SalePrice
	}
	if p.Customer != nil {
		s.Customer = model.Customer{
			Name:     strings.TrimSpace(p.Customer.Name),
			Document: strings.TrimSpace(p.Customer.Document),
			Phone:    strings.TrimSpace(p.Customer.Phone),
			Email:    strings.ToLower(strings.TrimSpace(p.Customer.Email)),
		}
	}
	if p.PaymentMethod != nil {
		s.PaymentMethod = *p.PaymentMethod
	}
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Documents != nil {
		s.Documents = *p.Documents
	}
}

func validateSale(s model.Sale) violations {
	var errs violations
	if !utils.IsHexID(s.VehicleID) {
		errs.add("vehicleId", "invalid vehicle id")
	}
	if s.SalePrice < 0 {
		errs.add("salePrice", "sale price must be zero or greater")
	}
	if s.Customer.Name == "" {
		errs.add("customer.name", "customer name is required")
	}
	if s.Customer.Document == "" {
		errs.add("customer.document", "customer document is required")
	}
	if s.Customer.Phone == "" {
		errs.add("customer.phone", "customer phone is required")
	}
	if !looksLikeEmail(s.Customer.Email) {
		errs.add("customer.email", "invalid customer email")
	}
	if !model.Contains(model.SalePaymentMethods, s.PaymentMethod) {
		errs.add("paymentMethod", "invalid payment method")
	}
	if !model.Contains(model.SaleStatuses, s.Status) {
		errs.add("status", "invalid status")
	}
	return errs
}

// publishCompleted emits the sale.completed event. Errors are logged by
// the publisher and never fail the request.
func publishCompleted(ctx context.Context, s model.Sale) {
	if s.Status != model.SaleCompleted {
		return
	}
	_ = service.PublishSaleCompleted(ctx, queue.SaleCompletedEvent{
		SaleID:      s.ID,
		VehicleID:   s.VehicleID,
		SalePrice:   s.SalePrice,
		Customer:    s.Customer.Name,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// List handles GET /v1/sales with status/date filters.
func (h *SaleHandler) List(c echo.Context) error {
	q := repository.SaleQuery{
		Status: c.QueryParam("status"),
		Page:   pageFrom(c),
	}
	q.StartDate = parseDate(c.QueryParam("startDate"))
	q.EndDate = parseDate(c.QueryParam("endDate"))

	items, total, err := h.Sales.Search(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("sale search: %v", err)
		return internalErr(c, "could not list sales", err)
	}
	return c.JSON(http.StatusOK, newListResponse(items, total, q.Page))
}

// Get handles GET /v1/sales/:id. A deleted vehicle shows up as a null
// vehicle summary, never as an error.
func (h *SaleHandler) Get(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	s, err := h.Sales.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "sale")
		}
		return internalErr(c, "could not load sale", err)
	}
	return c.JSON(http.StatusOK, s)
}

// Create handles POST /v1/sales. Status defaults to completed, which
// immediately fires the completion trigger.
func (h *SaleHandler) Create(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req saleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	s := model.Sale{
		VehicleID: req.VehicleID,
		Customer: model.Customer{
			Name:     strings.TrimSpace(req.Customer.Name),
			Document: strings.TrimSpace(req.Customer.Document),
			Phone:    strings.TrimSpace(req.Customer.Phone),
			Email:    strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		},
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Status:        req.Status,
		Documents:     req.Documents,
		CreatedBy:     ident.ID,
	}
	if req.SalePrice != nil {
		s.SalePrice = *req.SalePrice
	} else {
		s.SalePrice = -1 // force the validation error for a missing price
	}
	if req.Date != nil {
		s.Date = *req.Date
	}
	if s.Status == "" {
		s.Status = model.SaleCompleted
	}
	if bad, err := validateSale(s).respond(c); bad {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sales.Create(ctx, &s); err != nil {
		c.Logger().Errorf("sale create: %v", err)
		return internalErr(c, "could not create sale", err)
	}
	publishCompleted(ctx, s)

	s, err := h.Sales.GetByID(ctx, s.ID)
	if err != nil {
		return internalErr(c, "could not load sale", err)
	}
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT /v1/sales/:id. Any status may be set by an
// authorized update; moving to completed fires the trigger, moving away
// from it does not undo anything.
func (h *SaleHandler) Update(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	var patch salePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "sale")
		}
		return internalErr(c, "could not load sale", err)
	}
	if !policy.CanMutate(ident, s.CreatedBy) {
		return forbidden(c)
	}

	patch.apply(&s)
	if bad, err := validateSale(s).respond(c); bad {
		return err
	}
	if err := h.Sales.Update(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "sale")
		}
		c.Logger().Errorf("sale update: %v", err)
		return internalErr(c, "could not update sale", err)
	}
	publishCompleted(ctx, s)

	s, err = h.Sales.GetByID(ctx, id)
	if err != nil {
		return internalErr(c, "could not load sale", err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete handles DELETE /v1/sales/:id. Deleting a completed sale leaves
// the vehicle Sold.
func (h *SaleHandler) Delete(c echo.Context) error {
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

	s, err := h.Sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "sale")
		}
		return internalErr(c, "could not load sale", err)
	}
	if !policy.CanMutate(ident, s.CreatedBy) {
		return forbidden(c)
	}

	if err := h.Sales.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "sale")
		}
		return internalErr(c, "could not delete sale", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sale removed"})
}
