package middleware // middleware provides reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/utils"
)

// Context key under which verified claims are stored.
const claimsKey = "claims"

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error": echo.Map{"code": "unauthorized", "message": message},
	})
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

// JWTAuth validates a Bearer access token and injects the verified claims
// into the request context.  Expired and malformed tokens are rejected with
// the same status; the distinction stays server-side.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return unauthorized(c, "missing bearer token")
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth injects claims when a valid bearer token is present and
// otherwise lets the request through as a guest.  Cart routes use this: the
// same endpoint serves authenticated users and cookie-identified guests,
// and a stale token downgrades to guest rather than failing the request.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if claims, err := utils.VerifyToken(secret, raw); err == nil {
					c.Set(claimsKey, claims)
				}
			}
			return next(c)
		}
	}
}

// CurrentClaims returns the verified claims stored by JWTAuth or
// OptionalJWTAuth, or nil for guest requests.
func CurrentClaims(c echo.Context) *utils.Claims {
	if v := c.Get(claimsKey); v != nil {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
