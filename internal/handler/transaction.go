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
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

// TransactionHandler serves the bookkeeping endpoints. All routes are
// authenticated; mutations are ownership-gated like the other
// resources.
type TransactionHandler struct {
	Transactions *repository.TransactionRepo
}

func NewTransactionHandler(t *repository.TransactionRepo) *TransactionHandler {
	if t == nil {
		panic("nil repository passed to NewTransactionHandler")
	}
	return &TransactionHandler{Transactions: t}
}

type transactionReq struct {
	Type          string           `json:"type"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	Amount        *float64         `json:"amount"`
	Date          *time.Time       `json:"date"`
	PaymentMethod string           `json:"paymentMethod"`
	Status        string           `json:"status"`
	VehicleID     string           `json:"vehicleId"`
	Attachments   []model.Document `json:"attachments"`
	Notes         string           `json:"notes"`
}

type transactionPatch struct {
	Type          *string           `json:"type"`
	Category      *string           `json:"category"`
	Description   *string           `json:"description"`
	Amount        *float64          `json:"amount"`
	Date          *time.Time        `json:"date"`
	PaymentMethod *string           `json:"paymentMethod"`
	Status        *string           `json:"status"`
	VehicleID     *string           `json:"vehicleId"`
	Attachments   *[]model.Document `json:"attachments"`
	Notes         *string           `json:"notes"`
}

func (p transactionPatch) apply(t *model.Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.VehicleID != nil {
		t.VehicleID = *p.VehicleID
	}
	if p.Attachments != nil {
		t.Attachments = *p.Attachments
	}
	if p.Notes != nil {
		t.Notes = strings.TrimSpace(*p.Notes)
	}
}

func validateTransaction(t model.Transaction) violations {
	var errs violations
	if !model.Contains(model.TransactionTypes, t.Type) {
		errs.add("type", "invalid transaction type")
	}
	if !model.Contains(model.TransactionCategories, t.Category) {
		errs.add("category", "invalid category")
	}
	if t.Description == "" {
		errs.add("description", "description is required")
	}
	if t.Amount < 0 {
		errs.add("amount", "amount must be zero or greater")
	}
	if !model.Contains(model.TransactionPaymentMethods, t.PaymentMethod) {
		errs.add("paymentMethod", "invalid payment method")
	}
	if !model.Contains(model.TransactionStatuses, t.Status) {
		errs.add("status", "invalid status")
	}
	if t.VehicleID != "" && !utils.IsHexID(t.VehicleID) {
		errs.add("vehicleId", "invalid vehicle id")
	}
	return errs
}

// queryFrom builds the repository query shared by List and its summary.
func queryFrom(c echo.Context) repository.TransactionQuery {
	q := repository.TransactionQuery{
		Type:     c.QueryParam("type"),
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Page:     pageFrom(c),
	}
	q.StartDate = parseDate(c.QueryParam("startDate"))
	q.EndDate = parseDate(c.QueryParam("endDate"))
	if s := c.QueryParam("minAmount"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			q.MinAmount = &f
		}
	}
	if s := c.QueryParam("maxAmount"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			q.MaxAmount = &f
		}
	}
	return q
}

// List handles GET /v1/transactions. The response carries the filtered
// page plus income/expense totals over the whole filtered set.
func (h *TransactionHandler) List(c echo.Context) error {
	q := queryFrom(c)

	items, total, err := h.Transactions.Search(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("transaction search: %v", err)
		return internalErr(c, "could not list transactions", err)
	}
	summary, err := h.Transactions.Summary(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("transaction summary: %v", err)
		return internalErr(c, "could not list transactions", err)
	}

	resp := newListResponse(items, total, q.Page)
	return c.JSON(http.StatusOK, echo.Map{
		"items":   resp.Items,
		"total":   resp.Total,
		"page":    resp.Page,
		"pages":   resp.Pages,
		"summary": summary,
	})
}

// Report handles GET /v1/transactions/report: totals per (type,
// category, year, month), chronological.
func (h *TransactionHandler) Report(c echo.Context) error {
	start := parseDate(c.QueryParam("startDate"))
	end := parseDate(c.QueryParam("endDate"))
	rows, err := h.Transactions.Report(c.Request().Context(), start, end)
	if err != nil {
		c.Logger().Errorf("transaction report: %v", err)
		return internalErr(c, "could not build report", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"report": rows})
}

// Get handles GET /v1/transactions/:id.
func (h *TransactionHandler) Get(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	t, err := h.Transactions.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "transaction")
		}
		return internalErr(c, "could not load transaction", err)
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /v1/transactions. Status defaults to pending.
func (h *TransactionHandler) Create(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req transactionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	t := model.Transaction{
		Type:          req.Type,
		Category:      req.Category,
		Description:   strings.TrimSpace(req.Description),
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		VehicleID:     req.VehicleID,
		Attachments:   req.Attachments,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedBy:     ident.ID,
	}
	if req.Amount != nil {
		t.Amount = *req.Amount
	} else {
		t.Amount = -1 // force the validation error for a missing amount
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	if t.Status == "" {
		t.Status = model.SalePending
	}
	if bad, err := validateTransaction(t).respond(c); bad {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Transactions.Create(ctx, &t); err != nil {
		c.Logger().Errorf("transaction create: %v", err)
		return internalErr(c, "could not create transaction", err)
	}
	t, err := h.Transactions.GetByID(ctx, t.ID)
	if err != nil {
		return internalErr(c, "could not load transaction", err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/transactions/:id with patch semantics.
func (h *TransactionHandler) Update(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	var patch transactionPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "transaction")
		}
		return internalErr(c, "could not load transaction", err)
	}
	if !policy.CanMutate(ident, t.CreatedBy) {
		return forbidden(c)
	}

	patch.apply(&t)
	if bad, err := validateTransaction(t).respond(c); bad {
		return err
	}
	if err := h.Transactions.Update(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "transaction")
		}
		c.Logger().Errorf("transaction update: %v", err)
		return internalErr(c, "could not update transaction", err)
	}
	t, err = h.Transactions.GetByID(ctx, id)
	if err != nil {
		return internalErr(c, "could not load transaction", err)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/transactions/:id.
func (h *TransactionHandler) Delete(c echo.Context) error {
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

	t, err := h.Transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "transaction")
		}
		return internalErr(c, "could not load transaction", err)
	}
	if !policy.CanMutate(ident, t.CreatedBy) {
		return forbidden(c)
	}

	if err := h.Transactions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "transaction")
		}
		return internalErr(c, "could not delete transaction", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "transaction removed"})
}
