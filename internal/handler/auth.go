package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/queue"
	"github.com/iliyamo/storefront-api/internal/service"
)

// AuthHandler exposes registration, login, token refresh, logout and the
// profile endpoint.  Login additionally folds a guest cart into the user's
// cart when the request carries a session cookie.
type AuthHandler struct {
	auth    *service.AuthService
	carts   *service.CartService
	events  *queue.Publisher
	storeID uint64
}

func NewAuthHandler(auth *service.AuthService, carts *service.CartService, events *queue.Publisher, storeID uint64) *AuthHandler {
	return &AuthHandler{auth: auth, carts: carts, events: events, storeID: storeID}
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        uint64    `json:"id"`
	StoreID   uint64    `json:"store_id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func toUserResponse(u model.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		StoreID:   u.StoreID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.FirstName.Valid {
		v := u.FirstName.String
		resp.FirstName = &v
	}
	if u.LastName.Valid {
		v := u.LastName.String
		resp.LastName = &v
	}
	return resp
}

// Register creates an account and returns the profile with a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	u, pair, err := h.auth.Register(c.Request().Context(), h.storeID, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return serviceError(c, err)
	}

	h.events.PublishUserRegistered(c.Request().Context(), queue.UserRegisteredEvent{
		UserID:  u.ID,
		StoreID: u.StoreID,
		Email:   u.Email,
		Role:    u.Role,
	})

	return c.JSON(http.StatusCreated, authResponse{
		User:         toUserResponse(u),
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
	})
}

// Login verifies credentials and issues a token pair.  When a guest session
// cookie rides along, the guest cart is merged into the user's cart and the
// cookie is expired.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	u, pair, err := h.auth.Login(c.Request().Context(), h.storeID, req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	h.mergeGuestCart(c, u)

	return c.JSON(http.StatusOK, authResponse{
		User:         toUserResponse(u),
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
	})
}

// mergeGuestCart folds the cart behind the request's session cookie, if any,
// into the user's cart.  A failed merge is logged and the cookie kept so the
// next login can retry; it never fails the login itself.
func (h *AuthHandler) mergeGuestCart(c echo.Context, u model.User) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	ctx := c.Request().Context()

	guest, err := h.carts.FindCartBySession(ctx, h.storeID, cookie.Value)
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) && svcErr.Kind == service.KindNotFound {
			c.SetCookie(expiredSessionCookie())
		} else {
			log.Printf("handler: locate guest cart: %v", err)
		}
		return
	}

	userCart, err := h.carts.GetOrCreateCart(ctx, service.CartOwner{StoreID: h.storeID, UserID: u.ID})
	if err != nil {
		log.Printf("handler: resolve user cart for merge: %v", err)
		return
	}
	moved, err := h.carts.Merge(ctx, guest.ID, userCart.ID)
	if err != nil {
		log.Printf("handler: merge cart %d into %d: %v", guest.ID, userCart.ID, err)
		return
	}
	c.SetCookie(expiredSessionCookie())

	h.events.PublishCartMerged(ctx, queue.CartMergedEvent{
		GuestCartID: guest.ID,
		UserCartID:  userCart.ID,
		UserID:      u.ID,
		StoreID:     h.storeID,
		ItemsMoved:  moved,
	})
}

// Refresh rotates a refresh token and returns a fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return jsonError(c, http.StatusBadRequest, "bad_request", "refresh_token is required")
	}

	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
	})
}

// RefreshAccess issues a new access token without rotating the refresh
// token.  Useful for clients that refresh eagerly and want to keep one
// long-lived refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return jsonError(c, http.StatusBadRequest, "bad_request", "refresh_token is required")
	}

	access, err := h.auth.RefreshAccess(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: access.Token})
}

// Logout revokes the presented refresh token.  Always answers 204; clients
// cannot probe which tokens exist.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
	}
	u, err := h.auth.GetUser(c.Request().Context(), claims.UserID())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResponse(u)})
}
