package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
)

// CartOwner identifies who a cart belongs to.  Exactly one of UserID and
// SessionToken is set; the handler layer enforces that an authenticated
// identity wins over any guest token present on the same request.
type CartOwner struct {
	StoreID      uint64
	UserID       uint64 // 0 for guests
	SessionToken string // empty for authenticated users
}

// CartView is the derived cart representation returned to clients.  Totals
// are recomputed from the current catalog on every read; prices reflect the
// catalog now, not the moment of adding, so they can drift before checkout.
type CartView struct {
	ID        uint64         `json:"id"`
	Items     []CartItemView `json:"items"`
	Total     uint64         `json:"total"`
	ItemCount uint32         `json:"item_count"`
}

// CartItemView is one enriched line of a CartView.
type CartItemView struct {
	ID          uint64  `json:"id"`
	ProductID   uint64  `json:"product_id"`
	VariantID   *uint64 `json:"variant_id,omitempty"`
	ProductName string  `json:"product_name"`
	ProductSlug string  `json:"product_slug"`
	ImageURL    *string `json:"product_image_url,omitempty"`
	VariantName *string `json:"variant_name,omitempty"`
	PriceCents  uint32  `json:"price"`
	Quantity    uint32  `json:"quantity"`
	Subtotal    uint64  `json:"subtotal"`
}

// CartService is the cart engine: identity-scoped cart resolution, stock
// bound item writes, derived totals and the guest-to-user merge.
type CartService struct {
	carts    *repository.CartRepo
	products *repository.ProductRepo
}

func NewCartService(carts *repository.CartRepo, products *repository.ProductRepo) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetOrCreateCart finds the cart matching the owner dimension exactly,
// creating an empty one when none exists.  Two concurrent first requests
// can race into two carts; the first match wins on every later read, which
// is tolerable at this scale.
func (s *CartService) GetOrCreateCart(ctx context.Context, owner CartOwner) (model.Cart, error) {
	var (
		cart model.Cart
		err  error
	)
	if owner.UserID != 0 {
		cart, err = s.carts.GetByUser(ctx, owner.StoreID, owner.UserID)
	} else {
		cart, err = s.carts.GetBySession(ctx, owner.StoreID, owner.SessionToken)
	}
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Cart{}, Internal(err)
	}

	var id uint64
	if owner.UserID != 0 {
		id, err = s.carts.CreateForUser(ctx, owner.StoreID, owner.UserID)
	} else {
		id, err = s.carts.CreateForSession(ctx, owner.StoreID, owner.SessionToken)
	}
	if err != nil {
		return model.Cart{}, Internal(err)
	}
	cart, err = s.carts.GetByID(ctx, id)
	if err != nil {
		return model.Cart{}, Internal(err)
	}
	return cart, nil
}

// FindCartBySession returns the guest cart for a session token, or
// ErrNotFound (as a service error) when there is none.  Login uses this to
// decide whether a merge is due without creating an empty guest cart.
func (s *CartService) FindCartBySession(ctx context.Context, storeID uint64, sessionToken string) (model.Cart, error) {
	cart, err := s.carts.GetBySession(ctx, storeID, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Cart{}, NotFound("cart not found")
		}
		return model.Cart{}, Internal(err)
	}
	return cart, nil
}

// View assembles the enriched cart response.  total and item_count are sums
// over the joined rows, never stored.
func (s *CartService) View(ctx context.Context, cartID uint64) (CartView, error) {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CartView{}, NotFound("cart not found")
		}
		return CartView{}, Internal(err)
	}
	rows, err := s.carts.ItemViews(ctx, cartID)
	if err != nil {
		return CartView{}, Internal(err)
	}
	view := CartView{ID: cartID, Items: make([]CartItemView, 0, len(rows))}
	for _, r := range rows {
		item := CartItemView{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			ProductSlug: r.ProductSlug,
			PriceCents:  r.PriceCents,
			Quantity:    r.Quantity,
			Subtotal:    uint64(r.PriceCents) * uint64(r.Quantity),
		}
		if r.VariantID != 0 {
			vid := r.VariantID
			item.VariantID = &vid
		}
		if r.ImageURL.Valid {
			u := r.ImageURL.String
			item.ImageURL = &u
		}
		if r.VariantName.Valid {
			n := r.VariantName.String
			item.VariantName = &n
		}
		view.Items = append(view.Items, item)
		view.Total += item.Subtotal
		view.ItemCount += item.Quantity
	}
	return view, nil
}

// AddItem adds quantity to a cart line, creating it if absent.  The stock
// bound applies to existing+requested, and the write itself is a single
// conflict-handling upsert so concurrent adds for the same line cannot lose
// updates; the check-then-write pair can still over-admit under heavy
// concurrency, which is accepted and documented.
func (s *CartService) AddItem(ctx context.Context, cartID, productID, variantID uint64, quantity uint32) error {
	if quantity == 0 {
		return Validation(FieldError{Field: "quantity", Message: "must be at least 1"})
	}
	stock, name, err := s.products.StockInfo(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if variantID != 0 {
				return NotFound("product variant not found")
			}
			return NotFound("product not found")
		}
		return Internal(err)
	}
	existing, err := s.carts.ItemQuantity(ctx, cartID, productID, variantID)
	if err != nil {
		return Internal(err)
	}
	requested := existing + quantity
	if requested > stock {
		return BadRequest(fmt.Sprintf("not enough stock for %s: available %d, requested %d", name, stock, requested))
	}
	if err := s.carts.UpsertItem(ctx, cartID, productID, variantID, quantity); err != nil {
		return Internal(err)
	}
	return nil
}

// UpdateItemQuantity overwrites a line's quantity after re-validating the
// absolute new value against current stock.
func (s *CartService) UpdateItemQuantity(ctx context.Context, itemID, cartID uint64, quantity uint32) error {
	if quantity == 0 {
		return Validation(FieldError{Field: "quantity", Message: "must be at least 1"})
	}
	item, err := s.carts.GetItem(ctx, itemID, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("cart item not found")
		}
		return Internal(err)
	}
	stock, name, err := s.products.StockInfo(ctx, item.ProductID, item.VariantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("product not found")
		}
		return Internal(err)
	}
	if quantity > stock {
		return BadRequest(fmt.Sprintf("not enough stock for %s: available %d, requested %d", name, stock, quantity))
	}
	if err := s.carts.UpdateItemQuantity(ctx, itemID, cartID, quantity); err != nil {
		return Internal(err)
	}
	return nil
}

// RemoveItem deletes one line.
func (s *CartService) RemoveItem(ctx context.Context, itemID, cartID uint64) error {
	err := s.carts.DeleteItem(ctx, itemID, cartID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("cart item not found")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

// Clear empties a cart.  Idempotent.
func (s *CartService) Clear(ctx context.Context, cartID uint64) error {
	if err := s.carts.Clear(ctx, cartID); err != nil {
		return Internal(err)
	}
	return nil
}

// Merge folds every guest cart line into the user cart with the same
// additive upsert AddItem uses, then deletes the guest cart.  Stock is not
// re-validated: each line passed the bound when it was added.  Returns the
// number of lines moved.
func (s *CartService) Merge(ctx context.Context, guestCartID, userCartID uint64) (int, error) {
	items, err := s.carts.Items(ctx, guestCartID)
	if err != nil {
		return 0, Internal(err)
	}
	for _, it := range items {
		if err := s.carts.UpsertItem(ctx, userCartID, it.ProductID, it.VariantID, it.Quantity); err != nil {
			return 0, Internal(err)
		}
	}
	if err := s.carts.DeleteCart(ctx, guestCartID); err != nil {
		return 0, Internal(err)
	}
	return len(items), nil
}
