package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Register creates a user and returns a signed token immediately.
// Duplicate emails (case-insensitive) are rejected with a 400, the
// same shape as any other validation failure.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var errs violations
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "name is required")
	}
	if !looksLikeEmail(req.Email) {
		errs.add("email", "invalid email")
	}
	if len(req.Password) < 6 {
		errs.add("password", "password must have at least 6 characters")
	}
	if bad, err := errs.respond(c); bad {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		c.Logger().Errorf("register: %v", err)
		return internalErr(c, "create user failed", err)
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return internalErr(c, "issue token failed", err)
	}
	return c.JSON(http.StatusCreated, authResp{Token: token.Token, User: toUserPart(u)})
}

// Login verifies credentials and returns a fresh token. The response
// for an unknown email and for a wrong password is byte-identical so
// accounts can not be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("login: %v", err)
		return internalErr(c, "query failed", err)
	}
	if !u.Active || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return internalErr(c, "issue token failed", err)
	}
	return c.JSON(http.StatusOK, authResp{Token: token.Token, User: toUserPart(u)})
}

// Me returns the authenticated user, minus the credential hash.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user")
		}
		return internalErr(c, "query failed", err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateProfile changes name/email and, when both password fields are
// present, the password after checking the current one.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ident, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user")
		}
		return internalErr(c, "query failed", err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if !looksLikeEmail(email) {
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": violations{{Field: "email", Message: "invalid email"}}})
		}
		// Stored lower-cased; normalize here so the response matches
		// the persisted record.
		u.Email = strings.ToLower(email)
	}
	if req.CurrentPassword != "" && req.NewPassword != "" {
		if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password is incorrect"})
		}
		if len(req.NewPassword) < 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": violations{{Field: "newPassword", Message: "password must have at least 6 characters"}}})
		}
		hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
		if err != nil {
			return internalErr(c, "hash failed", err)
		}
		u.PasswordHash = hash
	}

	if err := h.Users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return internalErr(c, "update failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Deactivate soft-deletes a user account (admin only; the route is
// guarded by RequireRole). The row stays so ownership references on
// existing resources keep resolving.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user")
		}
		return internalErr(c, "deactivate failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
