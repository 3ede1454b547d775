package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront-api/internal/model"
)

// CartRepo persists carts and cart items.  The additive upsert used by
// UpsertItem relies on the UNIQUE(cart_id, product_id, variant_id) key, so
// concurrent adds for the same line serialize inside MySQL instead of
// overwriting each other.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

const cartColumns = "id, store_id, user_id, session_token, created_at, updated_at"

// CartItemView is one enriched cart line as joined against the current
// catalog.  Price and name reflect the catalog now, not the moment the item
// was added; totals are derived from these rows at read time.
type CartItemView struct {
	ID          uint64
	ProductID   uint64
	VariantID   uint64 // 0 = base product
	ProductName string
	ProductSlug string
	ImageURL    sql.NullString
	VariantName sql.NullString
	PriceCents  uint32
	Quantity    uint32
}

func scanCart(row interface{ Scan(...interface{}) error }) (model.Cart, error) {
	var c model.Cart
	err := row.Scan(&c.ID, &c.StoreID, &c.UserID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cart{}, ErrNotFound
	}
	return c, err
}

// GetByUser finds the cart owned by an authenticated user.
func (r *CartRepo) GetByUser(ctx context.Context, storeID, userID uint64) (model.Cart, error) {
	return scanCart(r.DB.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE store_id=? AND user_id=? LIMIT 1",
		storeID, userID))
}

// GetBySession finds the cart owned by a guest session token.
func (r *CartRepo) GetBySession(ctx context.Context, storeID uint64, sessionToken string) (model.Cart, error) {
	return scanCart(r.DB.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE store_id=? AND session_token=? LIMIT 1",
		storeID, sessionToken))
}

// GetByID fetches a cart by id.
func (r *CartRepo) GetByID(ctx context.Context, id uint64) (model.Cart, error) {
	return scanCart(r.DB.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE id=? LIMIT 1", id))
}

// CreateForUser inserts an empty user-owned cart and returns its ID.
func (r *CartRepo) CreateForUser(ctx context.Context, storeID, userID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO carts (store_id, user_id) VALUES (?,?)", storeID, userID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// CreateForSession inserts an empty guest cart and returns its ID.
func (r *CartRepo) CreateForSession(ctx context.Context, storeID uint64, sessionToken string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO carts (store_id, session_token) VALUES (?,?)", storeID, sessionToken)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// Items returns the raw item rows of a cart, oldest first.
func (r *CartRepo) Items(ctx context.Context, cartID uint64) ([]model.CartItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, cart_id, product_id, variant_id, quantity, created_at, updated_at FROM cart_items WHERE cart_id=? ORDER BY created_at, id",
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID,
			&it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ItemViews joins cart items against the current catalog.  The variant price
// wins when present, else the product price; a zero VariantID joins nothing
// on the LEFT JOIN and falls through to the product columns.
func (r *CartRepo) ItemViews(ctx context.Context, cartID uint64) ([]CartItemView, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT ci.id, ci.product_id, ci.variant_id, p.name, p.slug,
			(SELECT url FROM product_images WHERE product_id = p.id AND is_primary = 1 LIMIT 1),
			pv.name, COALESCE(pv.price_cents, p.price_cents), ci.quantity
		 FROM cart_items ci
		 INNER JOIN products p ON p.id = ci.product_id
		 LEFT JOIN product_variants pv ON pv.id = ci.variant_id
		 WHERE ci.cart_id=?
		 ORDER BY ci.created_at, ci.id`,
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartItemView
	for rows.Next() {
		var v CartItemView
		if err := rows.Scan(&v.ID, &v.ProductID, &v.VariantID, &v.ProductName, &v.ProductSlug,
			&v.ImageURL, &v.VariantName, &v.PriceCents, &v.Quantity); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ItemQuantity returns the current quantity for a (cart, product, variant)
// line, or zero when no such line exists.
func (r *CartRepo) ItemQuantity(ctx context.Context, cartID, productID, variantID uint64) (uint32, error) {
	var q uint32
	err := r.DB.QueryRowContext(ctx,
		"SELECT quantity FROM cart_items WHERE cart_id=? AND product_id=? AND variant_id=? LIMIT 1",
		cartID, productID, variantID).Scan(&q)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return q, err
}

// GetItem fetches one item scoped to its cart.
func (r *CartRepo) GetItem(ctx context.Context, itemID, cartID uint64) (model.CartItem, error) {
	var it model.CartItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, cart_id, product_id, variant_id, quantity, created_at, updated_at FROM cart_items WHERE id=? AND cart_id=? LIMIT 1",
		itemID, cartID).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CartItem{}, ErrNotFound
	}
	return it, err
}

// UpsertItem inserts a cart line or, when the (cart, product, variant) key
// already exists, adds the quantity to the existing row in one statement.
// Additive on conflict, never overwriting.
func (r *CartRepo) UpsertItem(ctx context.Context, cartID, productID, variantID uint64, quantity uint32) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, variant_id, quantity)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = NOW()`,
		cartID, productID, variantID, quantity)
	return err
}

// UpdateItemQuantity overwrites a line's quantity.  Callers verify the item
// exists first (they need the row for the stock check anyway), so affected
// row counts are not inspected here: MySQL reports zero rows for a no-op
// update to the same quantity.
func (r *CartRepo) UpdateItemQuantity(ctx context.Context, itemID, cartID uint64, quantity uint32) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=?, updated_at=NOW() WHERE id=? AND cart_id=?",
		quantity, itemID, cartID)
	return err
}

// DeleteItem removes one line, reporting ErrNotFound when nothing matched.
func (r *CartRepo) DeleteItem(ctx context.Context, itemID, cartID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id=? AND cart_id=?", itemID, cartID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear deletes every line of a cart.  Clearing an empty cart is a no-op.
func (r *CartRepo) Clear(ctx context.Context, cartID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID)
	return err
}

// DeleteCart removes a cart and its items in one transaction.  Used when a
// guest cart has been merged away.
func (r *CartRepo) DeleteCart(ctx context.Context, cartID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM carts WHERE id=?", cartID); err != nil {
		return err
	}
	return tx.Commit()
}
