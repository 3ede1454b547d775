package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/storefront-api/internal/model"
)

// UserRepo persists accounts.  Password hashing happens in the auth service;
// this layer stores and retrieves rows only.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, store_id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at"

// Create inserts a customer account and returns its ID.  The (store_id,
// email) unique key reports duplicates as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, storeID uint64, email, passwordHash string, firstName, lastName *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (store_id, email, password_hash, first_name, last_name, role) VALUES (?,?,?,?,?,?)",
		storeID, email, passwordHash, firstName, lastName, model.RoleCustomer)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateEntry) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by store and normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, storeID uint64, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE store_id=? AND email=? LIMIT 1",
		storeID, email).
		Scan(&u.ID, &u.StoreID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.StoreID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}
