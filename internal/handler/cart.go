package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/service"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// sessionCookieName carries the guest cart identity between requests.
const (
	sessionCookieName   = "storefront_session"
	sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days, in seconds
)

func newSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CartHandler serves the cart endpoints for both authenticated users and
// cookie-identified guests.
type CartHandler struct {
	carts   *service.CartService
	storeID uint64
}

func NewCartHandler(carts *service.CartService, storeID uint64) *CartHandler {
	return &CartHandler{carts: carts, storeID: storeID}
}

type addItemRequest struct {
	ProductID uint64  `json:"product_id"`
	VariantID *uint64 `json:"variant_id"`
	Quantity  uint32  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity uint32 `json:"quantity"`
}

// resolveOwner determines who the cart request belongs to.  A verified
// bearer token always wins over any cookie; otherwise the session cookie is
// used, and when none exists a fresh guest token is minted and set on the
// response so the cart survives the next request.
func (h *CartHandler) resolveOwner(c echo.Context) service.CartOwner {
	if claims := middleware.CurrentClaims(c); claims != nil {
		return service.CartOwner{StoreID: h.storeID, UserID: claims.UserID()}
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return service.CartOwner{StoreID: h.storeID, SessionToken: cookie.Value}
	}
	token := utils.NewSessionToken()
	c.SetCookie(newSessionCookie(token))
	return service.CartOwner{StoreID: h.storeID, SessionToken: token}
}

// Get returns the cart view for the request identity, creating an empty
// cart on first touch.
func (h *CartHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	cart, err := h.carts.GetOrCreateCart(ctx, h.resolveOwner(c))
	if err != nil {
		return serviceError(c, err)
	}
	view, err := h.carts.View(ctx, cart.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddItem adds quantity of a product (or variant) to the cart and returns
// the updated view.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return jsonError(c, http.StatusBadRequest, "bad_request", "product_id is required")
	}
	var variantID uint64
	if req.VariantID != nil {
		variantID = *req.VariantID
	}

	ctx := c.Request().Context()
	cart, err := h.carts.GetOrCreateCart(ctx, h.resolveOwner(c))
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.carts.AddItem(ctx, cart.ID, req.ProductID, variantID, req.Quantity); err != nil {
		return serviceError(c, err)
	}
	view, err := h.carts.View(ctx, cart.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateItem overwrites one line's quantity and returns the updated view.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid item id")
	}
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	ctx := c.Request().Context()
	cart, err := h.carts.GetOrCreateCart(ctx, h.resolveOwner(c))
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.carts.UpdateItemQuantity(ctx, itemID, cart.ID, req.Quantity); err != nil {
		return serviceError(c, err)
	}
	view, err := h.carts.View(ctx, cart.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// RemoveItem deletes one line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid item id")
	}

	ctx := c.Request().Context()
	cart, err := h.carts.GetOrCreateCart(ctx, h.resolveOwner(c))
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.carts.RemoveItem(ctx, itemID, cart.ID); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	cart, err := h.carts.GetOrCreateCart(ctx, h.resolveOwner(c))
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.carts.Clear(ctx, cart.ID); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
