package model

import (
	"database/sql"
	"time"
)

// Product status values stored in products.status.  Deleting a product is a
// soft delete: the row is archived so existing carts keep resolving.
const (
	ProductDraft    = "draft"
	ProductActive   = "active"
	ProductArchived = "archived"
)

// Product represents a row of the `products` table.  Prices are integer
// cents.  StockQty is the sellable quantity for products without variants;
// variant-level stock overrides it when a variant is chosen.
//
// Fields:
//  ID         – primary key identifier.
//  StoreID    – owning store.
//  CategoryID – optional category reference.
//  Name       – display name.
//  Slug       – URL-safe identifier, derived from Name, unique per store.
//  Description – optional long-form description.
//  PriceCents – unit price in cents.
//  SKU        – optional stock keeping unit.
//  StockQty   – available stock for the base product.
//  Status     – one of the Product* constants.
//  IsFeatured – whether the product is highlighted on the storefront.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Product struct {
	ID          uint64         // products.id
	StoreID     uint64         // products.store_id
	CategoryID  sql.NullInt64  // products.category_id (nullable)
	Name        string         // products.name
	Slug        string         // products.slug
	Description sql.NullString // products.description (nullable)
	PriceCents  uint32         // products.price_cents
	SKU         sql.NullString // products.sku (nullable)
	StockQty    uint32         // products.stock_qty
	Status      string         // products.status
	IsFeatured  bool           // products.is_featured
	CreatedAt   time.Time      // products.created_at
	UpdatedAt   time.Time      // products.updated_at
}

// ProductVariant represents a row of the `product_variants` table.  A
// variant may override the product price; when PriceCents is null the base
// product price applies.  Variant stock is independent of product stock.
type ProductVariant struct {
	ID         uint64        // product_variants.id
	ProductID  uint64        // product_variants.product_id
	Name       string        // product_variants.name
	PriceCents sql.NullInt64 // product_variants.price_cents (nullable override)
	SKU        sql.NullString
	StockQty   uint32    // product_variants.stock_qty
	SortOrder  uint32    // product_variants.sort_order
	CreatedAt  time.Time // product_variants.created_at
	UpdatedAt  time.Time // product_variants.updated_at
}

// ProductImage represents a row of the `product_images` table.
type ProductImage struct {
	ID        uint64 // product_images.id
	ProductID uint64 // product_images.product_id
	URL       string // product_images.url
	IsPrimary bool   // product_images.is_primary
	SortOrder uint32 // product_images.sort_order
}
