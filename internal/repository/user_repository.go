package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,active,created_at,updated_at"

// Create inserts a user with a hashed password and returns the stored
// record. Email is normalized to lower case so uniqueness is
// case-insensitive.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	now := time.Now().UTC()
	u := model.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id,name,email,password_hash,role,active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email. Returns ErrNotFound
// when no account uses the address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetActiveByID fetches a user by id, treating a deactivated account
// the same as a missing one. The auth middleware relies on this so a
// soft-deleted user cannot be told apart from one that never existed.
func (r *UserRepo) GetActiveByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND active=1 LIMIT 1", id))
}

// UpdateProfile saves a changed name, email and password hash.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, updated_at=? WHERE id=?",
		u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, time.Now().UTC(), u.ID)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Deactivate soft-deletes a user. The row is kept so createdBy
// references on existing resources remain resolvable.
func (r *UserRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET active=0, updated_at=? WHERE id=?", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}
