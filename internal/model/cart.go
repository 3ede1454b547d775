package model

import (
	"database/sql"
	"time"
)

// Cart represents a row of the `carts` table.  A cart is owned by exactly
// one of an authenticated user (UserID) or a guest session (SessionToken);
// the other column is null.  Carts are created lazily on the first
// cart-touching request and removed only when merged away.
type Cart struct {
	ID           uint64         // carts.id
	StoreID      uint64         // carts.store_id
	UserID       sql.NullInt64  // carts.user_id (null for guest carts)
	SessionToken sql.NullString // carts.session_token (null for user carts)
	CreatedAt    time.Time      // carts.created_at
	UpdatedAt    time.Time      // carts.updated_at
}

// CartItem represents a row of the `cart_items` table.  VariantID is zero
// when the item refers to the base product; storing zero instead of NULL
// keeps the UNIQUE(cart_id, product_id, variant_id) key effective under
// MySQL, which treats NULLs in unique indexes as distinct.  That key is what
// makes the additive upsert a single atomic write.
type CartItem struct {
	ID        uint64    // cart_items.id
	CartID    uint64    // cart_items.cart_id
	ProductID uint64    // cart_items.product_id
	VariantID uint64    // cart_items.variant_id (0 = no variant)
	Quantity  uint32    // cart_items.quantity (always > 0)
	CreatedAt time.Time // cart_items.created_at
	UpdatedAt time.Time // cart_items.updated_at
}
