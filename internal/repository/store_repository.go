package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront-api/internal/model"
)

// StoreRepo reads the `stores` table.  Resolution by request domain or
// header is not implemented yet; First stands in for it so that callers
// already pass an explicit store ID everywhere.
type StoreRepo struct{ DB *sql.DB }

func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{DB: db} }

// First returns the first store row.  TODO: replace with resolution by
// request Host once multi-store routing is needed.
func (r *StoreRepo) First(ctx context.Context) (model.Store, error) {
	var s model.Store
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, domain, created_at, updated_at FROM stores ORDER BY id LIMIT 1").
		Scan(&s.ID, &s.Name, &s.Slug, &s.Domain, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Store{}, ErrNotFound
	}
	return s, err
}
