package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// CategoryRepo provides access to the `categories` table.  The API returns
// the flat list with parent references; tree assembly is left to clients.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryColumns = "id, store_id, parent_id, name, slug, position, created_at, updated_at"

// ListByStore returns all categories of a store ordered by position.
func (r *CategoryRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE store_id=? ORDER BY position, id", storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.StoreID, &c.ParentID, &c.Name, &c.Slug,
			&c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetBySlug fetches a category by store and slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, storeID uint64, slug string) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE store_id=? AND slug=? LIMIT 1",
		storeID, slug).
		Scan(&c.ID, &c.StoreID, &c.ParentID, &c.Name, &c.Slug, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return c, err
}

// Create inserts a category, deriving the slug from the name.
func (r *CategoryRepo) Create(ctx context.Context, c model.Category) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (store_id, parent_id, name, slug, position) VALUES (?,?,?,?,?)",
		c.StoreID, c.ParentID, c.Name, utils.Slugify(c.Name), c.Position)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateEntry) {
			return 0, ErrSlugExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update renames or repositions a category.
func (r *CategoryRepo) Update(ctx context.Context, c model.Category) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET parent_id=?, name=?, slug=?, position=?, updated_at=NOW() WHERE id=? AND store_id=?",
		c.ParentID, c.Name, utils.Slugify(c.Name), c.Position, c.ID, c.StoreID)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateEntry) {
			return ErrSlugExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM categories WHERE id=? AND store_id=?", c.ID, c.StoreID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a category.  Products referencing it fall back to NULL via
// the foreign key's ON DELETE SET NULL.
func (r *CategoryRepo) Delete(ctx context.Context, storeID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM categories WHERE id=? AND store_id=?", id, storeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
