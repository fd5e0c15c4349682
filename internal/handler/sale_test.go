package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
)

func testSaleHandler(t *testing.T) (*SaleHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSaleHandler(repository.NewSaleRepo(db)), mock
}

func saleCols() []string {
	return []string{
		"s.id", "s.vehicle_id", "s.sale_price", "s.customer", "s.payment_method",
		"s.date", "s.notes", "s.status", "s.documents", "s.created_by",
		"s.created_at", "s.updated_at", "v.id", "v.brand", "v.model", "v.year",
	}
}

func oneSaleRow(status, createdBy string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(saleCols()).AddRow(
		"b1b2c3d4e5f6a7b8c9d0e1f2", vehicleID, 45000.0,
		[]byte(`{"name":"Maria Souza","document":"123","phone":"11999990000","email":"maria@example.com"}`),
		"pix", now, nil, status, []byte(`[]`), createdBy, now, now,
		vehicleID, "Toyota", "Corolla", 2021)
}

func TestSaleCreateDefaultsToCompletedAndMarksVehicleSold(t *testing.T) {
	h, mock := testSaleHandler(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").WillReturnResult(sqlmock.NewResult(0, 1))
	// status omitted in the payload defaults to completed, so the
	// trigger fires inside the same transaction
	mock.ExpectExec("UPDATE vehicles SET status=").
		WithArgs(model.VehicleSold, sqlmock.AnyArg(), vehicleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("completed", ownerID))

	c, rec := newCtx(http.MethodPost, "/v1/sales",
		`{"vehicleId":"`+vehicleID+`","salePrice":45000,
		  "customer":{"name":"Maria Souza","document":"123","phone":"11999990000","email":"maria@example.com"},
		  "paymentMethod":"pix"}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "completed", body["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreatePendingSkipsTrigger(t *testing.T) {
	h, mock := testSaleHandler(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("pending", ownerID))

	c, rec := newCtx(http.MethodPost, "/v1/sales",
		`{"vehicleId":"`+vehicleID+`","salePrice":45000,
		  "customer":{"name":"Maria Souza","document":"123","phone":"11999990000","email":"maria@example.com"},
		  "paymentMethod":"cash","status":"pending"}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateReportsEveryViolation(t *testing.T) {
	h, _ := testSaleHandler(t)

	c, rec := newCtx(http.MethodPost, "/v1/sales", `{"customer":{"email":"bad"}}`)
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.Create(c))
	fields := violatedFields(t, rec)
	require.Contains(t, fields, "vehicleId")
	require.Contains(t, fields, "salePrice")
	require.Contains(t, fields, "customer.name")
	require.Contains(t, fields, "customer.email")
	require.Contains(t, fields, "paymentMethod")
}

func TestSaleUpdateForbiddenForNonOwner(t *testing.T) {
	h, mock := testSaleHandler(t)
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("pending", ownerID))

	c, rec := newCtx(http.MethodPut, "/v1/sales/b1b2c3d4e5f6a7b8c9d0e1f2", `{"notes":"x"}`)
	withID(c, "b1b2c3d4e5f6a7b8c9d0e1f2")
	as(c, otherID, model.RoleUser)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUpdateMissingBeatsForbidden(t *testing.T) {
	h, mock := testSaleHandler(t)
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(sqlmock.NewRows(saleCols()))

	c, rec := newCtx(http.MethodPut, "/v1/sales/b1b2c3d4e5f6a7b8c9d0e1f2", `{"notes":"x"}`)
	withID(c, "b1b2c3d4e5f6a7b8c9d0e1f2")
	as(c, otherID, model.RoleUser)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaleUpdateToCompletedFiresTrigger(t *testing.T) {
	h, mock := testSaleHandler(t)
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("pending", ownerID))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sales SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE vehicles SET status=").
		WithArgs(model.VehicleSold, sqlmock.AnyArg(), vehicleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("completed", ownerID))

	c, rec := newCtx(http.MethodPut, "/v1/sales/b1b2c3d4e5f6a7b8c9d0e1f2", `{"status":"completed"}`)
	withID(c, "b1b2c3d4e5f6a7b8c9d0e1f2")
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUpdateToCancelledLeavesVehicleAlone(t *testing.T) {
	h, mock := testSaleHandler(t)
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("completed", ownerID))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sales SET").WillReturnResult(sqlmock.NewResult(0, 1))
	// no vehicle write: the trigger never reverses
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("cancelled", ownerID))

	c, rec := newCtx(http.MethodPut, "/v1/sales/b1b2c3d4e5f6a7b8c9d0e1f2", `{"status":"cancelled"}`)
	withID(c, "b1b2c3d4e5f6a7b8c9d0e1f2")
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleDeleteByAdmin(t *testing.T) {
	h, mock := testSaleHandler(t)
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").WillReturnRows(oneSaleRow("completed", ownerID))
	mock.ExpectExec("DELETE FROM sales").WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodDelete, "/v1/sales/b1b2c3d4e5f6a7b8c9d0e1f2", "")
	withID(c, "b1b2c3d4e5f6a7b8c9d0e1f2")
	as(c, adminID, model.RoleAdmin)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A bare yyyy-mm-dd date must filter just like a full timestamp.
func TestSaleListAcceptsBareDateFilter(t *testing.T) {
	h, mock := testSaleHandler(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`COUNT\(\*\) FROM sales`).
		WithArgs(start).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT s.id, s.vehicle_id").
		WithArgs(start, 10, 0).
		WillReturnRows(oneSaleRow("completed", ownerID))

	c, rec := newCtx(http.MethodGet, "/v1/sales?startDate=2026-01-01", "")
	as(c, ownerID, model.RoleUser)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
