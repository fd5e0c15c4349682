package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

// VehicleQuery defines filters and pagination for the vehicle listing.
// Nil pointer fields mean "not filtered"; string filters are skipped
// when empty. Brand and model match as case-insensitive substrings.
type VehicleQuery struct {
	Status   string
	Brand    string
	Model    string
	Year     *int
	MinPrice *float64
	MaxPrice *float64
	Page
}

const vehicleColumns = "id,brand,model,year,price,color,status,details,photos,documents,created_by,created_at,updated_at"

// Create inserts a vehicle, assigning its id and timestamps. Photos get
// their own ids here so the photo sub-resource routes can address them.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.ID = utils.NewID()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = model.VehicleAvailable
	}
	for i := range v.Photos {
		if v.Photos[i].ID == "" {
			v.Photos[i].ID = utils.NewID()
		}
	}
	details, err := marshalOrNil(v.Details, v.Details != nil)
	if err != nil {
		return err
	}
	photos, err := marshalList(v.Photos)
	if err != nil {
		return err
	}
	docs, err := marshalList(v.Documents)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO vehicles ("+vehicleColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		v.ID, v.Brand, v.Model, v.Year, v.Price, v.Color, v.Status,
		details, photos, docs, v.CreatedBy, v.CreatedAt, v.UpdatedAt)
	return err
}

// GetByID fetches a vehicle by id, ErrNotFound when absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (model.Vehicle, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1", id)
	v, err := scanVehicle(row.Scan)
	if err == sql.ErrNoRows {
		return model.Vehicle{}, ErrNotFound
	}
	return v, err
}

// Search returns a page of vehicles matching the query, newest first,
// along with the total match count.
func (r *VehicleRepo) Search(ctx context.Context, q VehicleQuery) ([]model.Vehicle, int64, error) {
	where := []string{}
	args := []any{}

	if q.Status != "" {
		where = append(where, "status=?")
		args = append(args, q.Status)
	}
	if q.Brand != "" {
		where = append(where, "LOWER(brand) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Brand)+"%")
	}
	if q.Model != "" {
		where = append(where, "LOWER(model) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Model)+"%")
	}
	if q.Year != nil {
		where = append(where, "year=?")
		args = append(args, *q.Year)
	}
	if q.MinPrice != nil {
		where = append(where, "price>=?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "price<=?")
		args = append(args, *q.MaxPrice)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vehicles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := q.bounds()
	dataSQL := "SELECT " + vehicleColumns + " FROM vehicles WHERE " + cond +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Vehicle, 0, limit)
	for rows.Next() {
		v, err := scanVehicle(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update saves the merged vehicle record. The caller has already
// applied the patch and re-validated; created_by and created_at are
// never part of the statement.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	v.UpdatedAt = time.Now().UTC()
	details, err := marshalOrNil(v.Details, v.Details != nil)
	if err != nil {
		return err
	}
	photos, err := marshalList(v.Photos)
	if err != nil {
		return err
	}
	docs, err := marshalList(v.Documents)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET brand=?, model=?, year=?, price=?, color=?, status=?, details=?, photos=?, documents=?, updated_at=? WHERE id=?",
		v.Brand, v.Model, v.Year, v.Price, v.Color, v.Status, details, photos, docs, v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a vehicle. Historical sales and transactions keep
// their dangling reference; readers surface it as a null vehicle.
func (r *VehicleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM vehicles WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPhotos appends entries to the vehicle's photo list. New photos are
// never main; duplicates by URL are allowed.
func (r *VehicleRepo) AddPhotos(ctx context.Context, vehicleID string, add []model.Photo) (model.Vehicle, error) {
	v, err := r.GetByID(ctx, vehicleID)
	if err != nil {
		return model.Vehicle{}, err
	}
	for i := range add {
		add[i].ID = utils.NewID()
		add[i].Main = false
	}
	v.Photos = append(v.Photos, add...)
	return v, r.savePhotos(ctx, &v)
}

// SetMainPhoto marks the photo with photoID as the single main photo,
// clearing the flag on every other entry. The whole list is rewritten
// in one statement so no intermediate state with two mains is visible.
func (r *VehicleRepo) SetMainPhoto(ctx context.Context, vehicleID, photoID string) (model.Vehicle, error) {
	v, err := r.GetByID(ctx, vehicleID)
	if err != nil {
		return model.Vehicle{}, err
	}
	found := false
	for i := range v.Photos {
		v.Photos[i].Main = v.Photos[i].ID == photoID
		found = found || v.Photos[i].Main
	}
	if !found {
		return model.Vehicle{}, ErrNotFound
	}
	return v, r.savePhotos(ctx, &v)
}

// RemovePhoto filters the photo out of the list. Removing an id that is
// not present is a no-op, not an error.
func (r *VehicleRepo) RemovePhoto(ctx context.Context, vehicleID, photoID string) (model.Vehicle, error) {
	v, err := r.GetByID(ctx, vehicleID)
	if err != nil {
		return model.Vehicle{}, err
	}
	kept := v.Photos[:0]
	for _, p := range v.Photos {
		if p.ID != photoID {
			kept = append(kept, p)
		}
	}
	v.Photos = kept
	return v, r.savePhotos(ctx, &v)
}

func (r *VehicleRepo) savePhotos(ctx context.Context, v *model.Vehicle) error {
	v.UpdatedAt = time.Now().UTC()
	photos, err := marshalList(v.Photos)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE vehicles SET photos=?, updated_at=? WHERE id=?", photos, v.UpdatedAt, v.ID)
	return err
}

// scanVehicle reads one vehicle row. The scan func abstraction lets it
// serve both QueryRow and Rows.
func scanVehicle(scan func(...any) error) (model.Vehicle, error) {
	var (
		v       model.Vehicle
		details []byte
		photos  []byte
		docs    []byte
	)
	err := scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.Price, &v.Color, &v.Status,
		&details, &photos, &docs, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Vehicle{}, err
	}
	if len(details) > 0 {
		v.Details = &model.VehicleDetails{}
		if err := unmarshalInto(details, v.Details); err != nil {
			return model.Vehicle{}, err
		}
	}
	v.Photos = []model.Photo{}
	if err := unmarshalInto(photos, &v.Photos); err != nil {
		return model.Vehicle{}, err
	}
	v.Documents = []model.Document{}
	if err := unmarshalInto(docs, &v.Documents); err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}
