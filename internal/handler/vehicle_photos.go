package handler

// Photo collection management for vehicles. Photos are URL metadata
// only; file upload and storage live outside this service. The single
// invariant maintained here is that at most one photo of a vehicle is
// marked main after any mutation.

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/policy"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
)

type photosReq struct {
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
}

// loadOwned fetches the vehicle and applies the ownership policy,
// writing the error response itself when the chain fails.
func (h *VehicleHandler) loadOwned(c echo.Context, ctx context.Context, id string) (model.Vehicle, bool) {
	ident, ok := actor(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.Vehicle{}, false
	}
	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = notFound(c, "vehicle")
		} else {
			_ = internalErr(c, "could not load vehicle", err)
		}
		return model.Vehicle{}, false
	}
	if !policy.CanMutate(ident, v.CreatedBy) {
		_ = forbidden(c)
		return model.Vehicle{}, false
	}
	return v, true
}

// AddPhotos handles POST /v1/vehicles/:id/photos. Entries are appended
// in request order, never deduplicated, and never main.
func (h *VehicleHandler) AddPhotos(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	var req photosReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var errs violations
	if len(req.Photos) == 0 {
		errs.add("photos", "at least one photo is required")
	}
	add := make([]model.Photo, 0, len(req.Photos))
	for _, p := range req.Photos {
		if strings.TrimSpace(p.URL) == "" {
			errs.add("photos", "photo url is required")
			continue
		}
		add = append(add, model.Photo{URL: strings.TrimSpace(p.URL)})
	}
	if bad, err := errs.respond(c); bad {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, ok := h.loadOwned(c, ctx, id); !ok {
		return nil
	}
	v, err := h.Vehicles.AddPhotos(ctx, id, add)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not add photos", err)
	}
	return c.JSON(http.StatusOK, v)
}

// SetMainPhoto handles PUT /v1/vehicles/:id/photos/:photoId/main. After
// the call exactly one photo carries main=true, the addressed one.
func (h *VehicleHandler) SetMainPhoto(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	photoID, ok := hexParam(c, "photoId")
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, ok := h.loadOwned(c, ctx, id); !ok {
		return nil
	}
	v, err := h.Vehicles.SetMainPhoto(ctx, id, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "photo")
		}
		return internalErr(c, "could not set main photo", err)
	}
	return c.JSON(http.StatusOK, v)
}

// RemovePhoto handles DELETE /v1/vehicles/:id/photos/:photoId. An id
// that is not in the list is a no-op, not an error.
func (h *VehicleHandler) RemovePhoto(c echo.Context) error {
	id, ok := hexParam(c, "id")
	if !ok {
		return nil
	}
	photoID, ok := hexParam(c, "photoId")
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, ok := h.loadOwned(c, ctx, id); !ok {
		return nil
	}
	v, err := h.Vehicles.RemovePhoto(ctx, id, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vehicle")
		}
		return internalErr(c, "could not remove photo", err)
	}
	return c.JSON(http.StatusOK, v)
}
