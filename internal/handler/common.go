package handler // handler defines http handlers

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/middleware"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

// fieldError is one entry of a validation failure response. Validation
// reports every violated field, not just the first one found.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type violations []fieldError

func (v *violations) add(field, message string) {
	*v = append(*v, fieldError{Field: field, Message: message})
}

// respond writes the collected violations as a 400, or returns false
// when there are none.
func (v violations) respond(c echo.Context) (bool, error) {
	if len(v) == 0 {
		return false, nil
	}
	return true, c.JSON(http.StatusBadRequest, echo.Map{"errors": v})
}

// actor extracts the identity resolved by the auth middleware.
func actor(c echo.Context) (model.Identity, bool) {
	return middleware.IdentityFrom(c)
}

// hexParam reads a path parameter and rejects anything that does not
// have the 24-hex id shape before any repository call. When the shape
// is wrong the 400 response has already been written and the handler
// should return nil.
func hexParam(c echo.Context, name string) (string, bool) {
	id := c.Param(name)
	if !utils.IsHexID(id) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return "", false
	}
	return id, true
}

// pageFrom parses the page/limit query parameters. Absent or malformed
// values fall back to the repository defaults (page 1, ten items).
func pageFrom(c echo.Context) repository.Page {
	var p repository.Page
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		p.Limit = n
	}
	return p
}

// listResponse is the envelope of every paginated listing.
type listResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func newListResponse(items any, total int64, p repository.Page) listResponse {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = 10
	}
	return listResponse{Items: items, Total: total, Page: page, Pages: repository.PageCount(total, limit)}
}

// parseDate accepts a timestamp or a bare date for the date-range query
// parameters. An empty or malformed value returns nil and the filter is
// skipped.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

// looksLikeEmail validates an email address shape.
func looksLikeEmail(s string) bool {
	a, err := mail.ParseAddress(strings.TrimSpace(s))
	return err == nil && a.Address == strings.TrimSpace(s)
}

// notFound / forbidden / internalErr keep the error body shape uniform
// across handlers.
func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// exposeErrorDetails controls whether 500 responses carry the
// underlying cause. Off in production; the cause then lives only in
// the server log.
var exposeErrorDetails bool

// ExposeErrorDetails toggles cause reporting on internal errors. Called
// once at startup from the environment setting.
func ExposeErrorDetails(on bool) { exposeErrorDetails = on }

func internalErr(c echo.Context, msg string, cause error) error {
	body := echo.Map{"error": msg}
	if exposeErrorDetails && cause != nil {
		body["detail"] = cause.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
