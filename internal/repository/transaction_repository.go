package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

// TransactionQuery defines filters and pagination for the transaction
// listing. The same filter set (minus pagination) drives the summary
// aggregation so totals always describe the filtered view.
type TransactionQuery struct {
	Type      string
	Category  string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *float64
	MaxAmount *float64
	Page
}

const txSelect = `SELECT t.id, t.type, t.category, t.description, t.amount, t.date,
	t.payment_method, t.status, t.vehicle_id, t.attachments, t.notes,
	t.created_by, t.created_at, t.updated_at,
	v.id, v.brand, v.model, v.year
	FROM transactions t LEFT JOIN vehicles v ON v.id = t.vehicle_id`

// Create inserts a transaction, assigning id and timestamps. Status
// defaults to pending, the date to now.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	t.ID = utils.NewID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = model.SalePending
	}
	if t.Date.IsZero() {
		t.Date = now
	}
	attachments, err := marshalList(t.Attachments)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO transactions (id,type,category,description,amount,date,payment_method,status,vehicle_id,attachments,notes,created_by,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		t.ID, t.Type, t.Category, t.Description, t.Amount, t.Date, t.PaymentMethod,
		t.Status, nullStr(t.VehicleID), attachments, nullStr(t.Notes),
		t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return err
}

// Update saves the merged transaction record.
func (r *TransactionRepo) Update(ctx context.Context, t *model.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	attachments, err := marshalList(t.Attachments)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE transactions SET type=?, category=?, description=?, amount=?, date=?, payment_method=?, status=?, vehicle_id=?, attachments=?, notes=?, updated_at=? WHERE id=?",
		t.Type, t.Category, t.Description, t.Amount, t.Date, t.PaymentMethod,
		t.Status, nullStr(t.VehicleID), attachments, nullStr(t.Notes), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a transaction with its optional vehicle summary.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (model.Transaction, error) {
	row := r.DB.QueryRowContext(ctx, txSelect+" WHERE t.id=? LIMIT 1", id)
	t, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return model.Transaction{}, ErrNotFound
	}
	return t, err
}

// Delete removes a transaction.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM transactions WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// filter builds the WHERE fragment shared by Search and Summary.
func (q TransactionQuery) filter() (string, []any) {
	where := []string{}
	args := []any{}
	if q.Type != "" {
		where = append(where, "t.type=?")
		args = append(args, q.Type)
	}
	if q.Category != "" {
		where = append(where, "t.category=?")
		args = append(args, q.Category)
	}
	if q.Status != "" {
		where = append(where, "t.status=?")
		args = append(args, q.Status)
	}
	if q.StartDate != nil {
		where = append(where, "t.date>=?")
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		where = append(where, "t.date<=?")
		args = append(args, *q.EndDate)
	}
	if q.MinAmount != nil {
		where = append(where, "t.amount>=?")
		args = append(args, *q.MinAmount)
	}
	if q.MaxAmount != nil {
		where = append(where, "t.amount<=?")
		args = append(args, *q.MaxAmount)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// Search returns a page of transactions matching the query ordered by
// transaction date, most recent first, plus the total match count.
func (r *TransactionRepo) Search(ctx context.Context, q TransactionQuery) ([]model.Transaction, int64, error) {
	cond, args := q.filter()

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions t WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := q.bounds()
	argsData := append(append([]any{}, args...), limit, offset)
	rows, err := r.DB.QueryContext(ctx,
		txSelect+" WHERE "+cond+" ORDER BY t.date DESC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Summary aggregates income and expense totals over the same filter
// set used by Search, ignoring pagination.
func (r *TransactionRepo) Summary(ctx context.Context, q TransactionQuery) (model.TransactionSummary, error) {
	cond, args := q.filter()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT t.type, COALESCE(SUM(t.amount),0) FROM transactions t WHERE "+cond+" GROUP BY t.type", args...)
	if err != nil {
		return model.TransactionSummary{}, err
	}
	defer rows.Close()

	var sum model.TransactionSummary
	for rows.Next() {
		var typ string
		var total float64
		if err := rows.Scan(&typ, &total); err != nil {
			return model.TransactionSummary{}, err
		}
		switch typ {
		case model.TransactionIncome:
			sum.Income = total
		case model.TransactionExpense:
			sum.Expense = total
		}
	}
	if err := rows.Err(); err != nil {
		return model.TransactionSummary{}, err
	}
	sum.Balance = sum.Income - sum.Expense
	return sum, nil
}

// Report returns totals grouped by (type, category, year, month) within
// the optional date range, ordered chronologically.
func (r *TransactionRepo) Report(ctx context.Context, start, end *time.Time) ([]model.ReportRow, error) {
	where := []string{}
	args := []any{}
	if start != nil {
		where = append(where, "date>=?")
		args = append(args, *start)
	}
	if end != nil {
		where = append(where, "date<=?")
		args = append(args, *end)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT type, category, YEAR(date), MONTH(date), COALESCE(SUM(amount),0), COUNT(*)
		FROM transactions WHERE `+cond+`
		GROUP BY type, category, YEAR(date), MONTH(date)
		ORDER BY YEAR(date), MONTH(date), type, category`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReportRow{}
	for rows.Next() {
		var row model.ReportRow
		if err := rows.Scan(&row.Type, &row.Category, &row.Year, &row.Month, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanTransaction(scan func(...any) error) (model.Transaction, error) {
	var (
		t           model.Transaction
		vehicleID   sql.NullString
		attachments []byte
		notes       sql.NullString
		refID       sql.NullString
		refBrand    sql.NullString
		refModel    sql.NullString
		refYear     sql.NullInt64
	)
	err := scan(&t.ID, &t.Type, &t.Category, &t.Description, &t.Amount, &t.Date,
		&t.PaymentMethod, &t.Status, &vehicleID, &attachments, &notes,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&refID, &refBrand, &refModel, &refYear)
	if err != nil {
		return model.Transaction{}, err
	}
	t.VehicleID = strOf(vehicleID)
	t.Notes = strOf(notes)
	t.Attachments = []model.Document{}
	if err := unmarshalInto(attachments, &t.Attachments); err != nil {
		return model.Transaction{}, err
	}
	if refID.Valid {
		t.Vehicle = &model.VehicleRef{
			ID:    refID.String,
			Brand: refBrand.String,
			Model: refModel.String,
			Year:  int(refYear.Int64),
		}
	}
	return t, nil
}
