package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// ProductFilter narrows product listings.  Zero values mean "no filter".
type ProductFilter struct {
	CategoryID uint64
	Status     string
	Query      string // case-insensitive substring on name/description
}

// ProductRepo provides catalog reads for the storefront and writes for the
// admin surface.  The cart engine only uses StockInfo and the getters.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id, store_id, category_id, name, slug, description, price_cents, sku, stock_qty, status, is_featured, created_at, updated_at"

func productFilterClause(storeID uint64, f ProductFilter) (string, []interface{}) {
	clause := " WHERE store_id=?"
	args := []interface{}{storeID}
	if f.CategoryID != 0 {
		clause += " AND category_id=?"
		args = append(args, f.CategoryID)
	}
	if f.Status != "" {
		clause += " AND status=?"
		args = append(args, f.Status)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		clause += " AND (name LIKE ? OR description LIKE ?)"
		args = append(args, pattern, pattern)
	}
	return clause, args
}

func scanProduct(row interface{ Scan(...interface{}) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.StoreID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.PriceCents, &p.SKU, &p.StockQty, &p.Status, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns one page of products matching the filter, newest first.
func (r *ProductRepo) List(ctx context.Context, storeID uint64, limit, offset int64, f ProductFilter) ([]model.Product, error) {
	clause, args := productFilterClause(storeID, f)
	args = append(args, limit, offset)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products"+clause+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the total number of products matching the filter.
func (r *ProductRepo) Count(ctx context.Context, storeID uint64, f ProductFilter) (int64, error) {
	clause, args := productFilterClause(storeID, f)
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+clause, args...).Scan(&n)
	return n, err
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// GetBySlug fetches a product by store and slug.
func (r *ProductRepo) GetBySlug(ctx context.Context, storeID uint64, slug string) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE store_id=? AND slug=? LIMIT 1", storeID, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Variants lists a product's variants in display order.
func (r *ProductRepo) Variants(ctx context.Context, productID uint64) ([]model.ProductVariant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, product_id, name, price_cents, sku, stock_qty, sort_order, created_at, updated_at FROM product_variants WHERE product_id=? ORDER BY sort_order, id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ProductVariant
	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceCents, &v.SKU,
			&v.StockQty, &v.SortOrder, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Images lists a product's images in display order.
func (r *ProductRepo) Images(ctx context.Context, productID uint64) ([]model.ProductImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, product_id, url, is_primary, sort_order FROM product_images WHERE product_id=? ORDER BY sort_order, id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ProductImage
	for rows.Next() {
		var im model.ProductImage
		if err := rows.Scan(&im.ID, &im.ProductID, &im.URL, &im.IsPrimary, &im.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

// StockInfo resolves the sellable stock and display name for a cart line.
// variantID zero means the base product; otherwise the variant row must
// exist and its stock wins.  Returns ErrNotFound when neither resolves.
func (r *ProductRepo) StockInfo(ctx context.Context, productID, variantID uint64) (uint32, string, error) {
	var (
		stock uint32
		name  string
		err   error
	)
	if variantID != 0 {
		err = r.DB.QueryRowContext(ctx,
			`SELECT pv.stock_qty, p.name FROM product_variants pv
			 INNER JOIN products p ON p.id = pv.product_id
			 WHERE pv.id=? AND pv.product_id=?`,
			variantID, productID).Scan(&stock, &name)
	} else {
		err = r.DB.QueryRowContext(ctx,
			"SELECT stock_qty, name FROM products WHERE id=?", productID).Scan(&stock, &name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	return stock, name, err
}

// Create inserts a product.  The slug is derived from the name; a duplicate
// slug within the store reports ErrSlugExists.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (uint64, error) {
	slug := utils.Slugify(p.Name)
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (store_id, category_id, name, slug, description, price_cents, sku, stock_qty, status, is_featured)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.StoreID, p.CategoryID, p.Name, slug, p.Description, p.PriceCents, p.SKU,
		p.StockQty, p.Status, p.IsFeatured)
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

// Update overwrites the mutable columns of a product.  The slug follows the
// name so stale links die with renames; API consumers are warned about that.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) error {
	slug := utils.Slugify(p.Name)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET category_id=?, name=?, slug=?, description=?, price_cents=?, sku=?, stock_qty=?, status=?, is_featured=?, updated_at=NOW()
		 WHERE id=? AND store_id=?`,
		p.CategoryID, p.Name, slug, p.Description, p.PriceCents, p.SKU,
		p.StockQty, p.Status, p.IsFeatured, p.ID, p.StoreID)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateEntry) {
			return ErrSlugExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the row is gone or nothing changed; confirm existence.
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Archive soft-deletes a product so existing cart items keep resolving.
func (r *ProductRepo) Archive(ctx context.Context, storeID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET status=?, updated_at=NOW() WHERE id=? AND store_id=? AND status<>?",
		model.ProductArchived, id, storeID, model.ProductArchived)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
