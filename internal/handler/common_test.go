package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
)

const (
	ownerID   = "64b3f0a1c2d3e4f5a6b7c8d9"
	otherID   = "ffffffffffffffffffffffff"
	adminID   = "0123456789abcdef01234567"
	vehicleID = "a1b2c3d4e5f6a7b8c9d0e1f2"
)

// newCtx builds an echo context around a recorded request. The body, if
// any, is sent as JSON.
func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// as stores an authenticated identity the way the auth middleware does.
func as(c echo.Context, id, role string) {
	c.Set("identity", model.Identity{ID: id, Role: role})
}

// withID binds the :id path parameter.
func withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// violatedFields extracts the field names of a validation response.
func violatedFields(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	raw, ok := body["errors"].([]any)
	require.True(t, ok, "expected an errors list, got %q", rec.Body.String())
	fields := make([]string, 0, len(raw))
	for _, e := range raw {
		entry, ok := e.(map[string]any)
		require.True(t, ok)
		fields = append(fields, entry["field"].(string))
	}
	return fields
}

func TestParseDateAcceptsTimestampAndBareDate(t *testing.T) {
	require.Nil(t, parseDate(""))
	require.Nil(t, parseDate("yesterday"))

	bare := parseDate("2026-01-01")
	require.NotNil(t, bare)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *bare)

	full := parseDate("2026-01-01T15:04:05Z")
	require.NotNil(t, full)
	require.Equal(t, 15, full.Hour())
}
