package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
)

const (
	photoA = "000000000000000000000001"
	photoB = "000000000000000000000002"
)

func vehicleRowWithPhotos(createdBy string, photos []model.Photo) *sqlmock.Rows {
	now := time.Now().UTC()
	raw, _ := json.Marshal(photos)
	return sqlmock.NewRows(vehicleCols()).AddRow(
		vehicleID, "Toyota", "Corolla", 2021, 98000.0, "black", "Available",
		nil, raw, []byte(`[]`), createdBy, now, now)
}

func withPhotoParams(c echo.Context, id, photoID string) {
	c.SetParamNames("id", "photoId")
	c.SetParamValues(id, photoID)
}

func TestSetMainPhotoLeavesExactlyOneMain(t *testing.T) {
	h, mock := testVehicleHandler(t)
	photos := []model.Photo{
		{ID: photoA, URL: "https://img/1.jpg", Main: true},
		{ID: photoB, URL: "https://img/2.jpg"},
	}
	// ownership check plus the repository's own fetch before the rewrite
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))
	mock.ExpectExec("UPDATE vehicles SET photos=").WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodPut, "/v1/vehicles/"+vehicleID+"/photos/"+photoB+"/main", "")
	withPhotoParams(c, vehicleID, photoB)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.SetMainPhoto(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var v model.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	mains := 0
	for _, p := range v.Photos {
		if p.Main {
			mains++
			require.Equal(t, photoB, p.ID)
		}
	}
	require.Equal(t, 1, mains)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMainPhotoUnknownPhotoIs404(t *testing.T) {
	h, mock := testVehicleHandler(t)
	photos := []model.Photo{{ID: photoA, URL: "https://img/1.jpg", Main: true}}
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))

	c, rec := newCtx(http.MethodPut, "/v1/vehicles/"+vehicleID+"/photos/"+photoB+"/main", "")
	withPhotoParams(c, vehicleID, photoB)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.SetMainPhoto(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "photo not found")
}

func TestAddPhotosRequiresURLs(t *testing.T) {
	h, _ := testVehicleHandler(t)

	c, rec := newCtx(http.MethodPost, "/v1/vehicles/"+vehicleID+"/photos",
		`{"photos":[{"url":" "}]}`)
	withID(c, vehicleID)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.AddPhotos(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "photo url is required")
}

func TestAddPhotosForbiddenForNonOwner(t *testing.T) {
	h, mock := testVehicleHandler(t)
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, nil))

	c, rec := newCtx(http.MethodPost, "/v1/vehicles/"+vehicleID+"/photos",
		`{"photos":[{"url":"https://img/9.jpg"}]}`)
	withID(c, vehicleID)
	as(c, otherID, model.RoleUser)
	require.NoError(t, h.AddPhotos(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePhotoAbsentIDSucceeds(t *testing.T) {
	h, mock := testVehicleHandler(t)
	photos := []model.Photo{{ID: photoA, URL: "https://img/1.jpg", Main: true}}
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))
	mock.ExpectQuery("SELECT id,brand,model").WillReturnRows(vehicleRowWithPhotos(ownerID, photos))
	mock.ExpectExec("UPDATE vehicles SET photos=").WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodDelete, "/v1/vehicles/"+vehicleID+"/photos/"+photoB, "")
	withPhotoParams(c, vehicleID, photoB)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.RemovePhoto(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var v model.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Len(t, v.Photos, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
