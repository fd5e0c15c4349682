package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

func testAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", TokenTTLDays: 7, BcryptCost: bcrypt.MinCost}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock
}

func userRows(hash string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "active", "created_at", "updated_at"}).
		AddRow(ownerID, "Ana", "ana@example.com", hash, model.RoleUser, active, now, now)
}

func TestRegisterReportsEveryViolation(t *testing.T) {
	h, _ := testAuthHandler(t)
	c, rec := newCtx(http.MethodPost, "/v1/auth/register", `{"name":" ","email":"nope","password":"123"}`)
	require.NoError(t, h.Register(c))
	require.ElementsMatch(t, []string{"name", "email", "password"}, violatedFields(t, rec))
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	h, mock := testAuthHandler(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email already registered")
}

func TestRegisterIssuesToken(t *testing.T) {
	h, mock := testAuthHandler(t)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	require.Equal(t, "ana@example.com", user["email"])
	require.Equal(t, model.RoleUser, user["role"])
	require.True(t, utils.IsHexID(user["id"].(string)))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Unknown email, wrong password and a deactivated account must all
// produce the same response so accounts cannot be enumerated.
func TestLoginFailuresAreUniform(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	run := func(t *testing.T, setup func(sqlmock.Sqlmock), password string) string {
		h, mock := testAuthHandler(t)
		setup(mock)
		c, rec := newCtx(http.MethodPost, "/v1/auth/login",
			`{"email":"ana@example.com","password":"`+password+`"}`)
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		return rec.Body.String()
	}

	unknown := run(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id,name,email").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "active", "created_at", "updated_at"}))
	}, "correct-horse")
	wrongPassword := run(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id,name,email").WillReturnRows(userRows(hash, true))
	}, "wrong")
	deactivated := run(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id,name,email").WillReturnRows(userRows(hash, false))
	}, "correct-horse")

	require.Equal(t, unknown, wrongPassword)
	require.Equal(t, unknown, deactivated)
}

func TestLoginSuccess(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	h, mock := testAuthHandler(t)
	mock.ExpectQuery("SELECT id,name,email").
		WithArgs("ana@example.com").
		WillReturnRows(userRows(hash, true))

	c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"Ana@Example.com","password":"correct-horse"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["token"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileWrongCurrentPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	h, mock := testAuthHandler(t)
	mock.ExpectQuery("SELECT id,name,email").WillReturnRows(userRows(hash, true))

	c, rec := newCtx(http.MethodPut, "/v1/auth/profile",
		`{"currentPassword":"wrong","newPassword":"brand-new"}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "current password is incorrect")
}

func TestUpdateProfileDuplicateEmailRejected(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	h, mock := testAuthHandler(t)
	mock.ExpectQuery("SELECT id,name,email").WillReturnRows(userRows(hash, true))
	mock.ExpectExec("UPDATE users SET name=").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	c, rec := newCtx(http.MethodPut, "/v1/auth/profile", `{"email":"taken@example.com"}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email already registered")
}

// The response must echo the email the way it is stored, lower-cased.
func TestUpdateProfileNormalizesEmail(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	h, mock := testAuthHandler(t)
	mock.ExpectQuery("SELECT id,name,email").WillReturnRows(userRows(hash, true))
	mock.ExpectExec("UPDATE users SET name=").
		WithArgs(sqlmock.AnyArg(), "new@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodPut, "/v1/auth/profile", `{"email":" New@Example.COM "}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "new@example.com", user["email"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateRejectsMalformedID(t *testing.T) {
	h, mock := testAuthHandler(t)

	c, rec := newCtx(http.MethodDelete, "/v1/users/abc", "")
	withID(c, "abc")
	as(c, adminID, model.RoleAdmin)
	require.NoError(t, h.Deactivate(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid id")
	// the malformed id never reaches the database
	require.NoError(t, mock.ExpectationsWereMet())
}
