package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

type SaleRepo struct{ DB *sql.DB }

func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{DB: db} }

// SaleQuery defines filters and pagination for the sale listing.
type SaleQuery struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page
}

// saleSelect joins the (possibly deleted) vehicle so listings can show
// a short summary. LEFT JOIN keeps sales with a dangling reference.
const saleSelect = `SELECT s.id, s.vehicle_id, s.sale_price, s.customer, s.payment_method,
	s.date, s.notes, s.status, s.documents, s.created_by, s.created_at, s.updated_at,
	v.id, v.brand, v.model, v.year
	FROM sales s LEFT JOIN vehicles v ON v.id = s.vehicle_id`

// Create inserts the sale and, when its status is completed, marks the
// referenced vehicle Sold inside the same transaction. Both writes
// commit or roll back together so a completed sale can not be observed
// next to a still-Available vehicle.
func (r *SaleRepo) Create(ctx context.Context, s *model.Sale) error {
	s.ID = utils.NewID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = model.SaleCompleted
	}
	if s.Date.IsZero() {
		s.Date = now
	}
	customer, err := json.Marshal(s.Customer)
	if err != nil {
		return err
	}
	docs, err := marshalList(s.Documents)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sales (id,vehicle_id,sale_price,customer,payment_method,date,notes,status,documents,created_by,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		s.ID, s.VehicleID, s.SalePrice, customer, s.PaymentMethod, s.Date,
		nullStr(s.Notes), s.Status, docs, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	if err := markSoldIfCompleted(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves the merged sale record, firing the same completion
// trigger as Create. Cancelling a completed sale does not move the
// vehicle back to Available; the trigger pushes one way only.
func (r *SaleRepo) Update(ctx context.Context, s *model.Sale) error {
	s.UpdatedAt = time.Now().UTC()
	customer, err := json.Marshal(s.Customer)
	if err != nil {
		return err
	}
	docs, err := marshalList(s.Documents)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE sales SET vehicle_id=?, sale_price=?, customer=?, payment_method=?, date=?, notes=?, status=?, documents=?, updated_at=? WHERE id=?",
		s.VehicleID, s.SalePrice, customer, s.PaymentMethod, s.Date,
		nullStr(s.Notes), s.Status, docs, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := markSoldIfCompleted(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

// markSoldIfCompleted is the completion trigger. An UPDATE touching
// zero rows is fine: the vehicle may have been deleted since the sale
// was recorded.
func markSoldIfCompleted(ctx context.Context, tx *sql.Tx, s *model.Sale) error {
	if s.Status != model.SaleCompleted {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE vehicles SET status=?, updated_at=? WHERE id=?",
		model.VehicleSold, time.Now().UTC(), s.VehicleID)
	return err
}

// GetByID fetches a sale with its vehicle summary.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (model.Sale, error) {
	row := r.DB.QueryRowContext(ctx, saleSelect+" WHERE s.id=? LIMIT 1", id)
	s, err := scanSale(row.Scan)
	if err == sql.ErrNoRows {
		return model.Sale{}, ErrNotFound
	}
	return s, err
}

// Search returns a page of sales matching the query ordered by sale
// date, most recent first, along with the total match count.
func (r *SaleRepo) Search(ctx context.Context, q SaleQuery) ([]model.Sale, int64, error) {
	where := []string{}
	args := []any{}

	if q.Status != "" {
		where = append(where, "s.status=?")
		args = append(args, q.Status)
	}
	if q.StartDate != nil {
		where = append(where, "s.date>=?")
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		where = append(where, "s.date<=?")
		args = append(args, *q.EndDate)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales s WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := q.bounds()
	argsData := append(append([]any{}, args...), limit, offset)
	rows, err := r.DB.QueryContext(ctx,
		saleSelect+" WHERE "+cond+" ORDER BY s.date DESC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Sale, 0, limit)
	for rows.Next() {
		s, err := scanSale(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Delete removes a sale. The referenced vehicle keeps whatever status
// it has; deleting a completed sale does not make it Available again.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sales WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSale(scan func(...any) error) (model.Sale, error) {
	var (
		s        model.Sale
		customer []byte
		docs     []byte
		notes    sql.NullString
		refID    sql.NullString
		refBrand sql.NullString
		refModel sql.NullString
		refYear  sql.NullInt64
	)
	err := scan(&s.ID, &s.VehicleID, &s.SalePrice, &customer, &s.PaymentMethod,
		&s.Date, &notes, &s.Status, &docs, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		&refID, &refBrand, &refModel, &refYear)
	if err != nil {
		return model.Sale{}, err
	}
	if err := unmarshalInto(customer, &s.Customer); err != nil {
		return model.Sale{}, err
	}
	s.Documents = []model.Document{}
	if err := unmarshalInto(docs, &s.Documents); err != nil {
		return model.Sale{}, err
	}
	s.Notes = strOf(notes)
	if refID.Valid {
		s.Vehicle = &model.VehicleRef{
			ID:    refID.String,
			Brand: refBrand.String,
			Model: refModel.String,
			Year:  int(refYear.Int64),
		}
	}
	return s, nil
}
