package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/utils"
)

const mwSecret = "middleware-test-secret"

func claimsEcho(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return c.String(http.StatusOK, "guest")
	}
	return c.String(http.StatusOK, claims.Email)
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authz string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(claimsEcho)(c))
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	signed, err := utils.IssueToken(mwSecret, 9, "jane@example.com", "customer", 1, time.Minute)
	require.NoError(t, err)

	rec := doRequest(t, middleware.JWTAuth(mwSecret), "Bearer "+signed.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com", rec.Body.String())
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := doRequest(t, middleware.JWTAuth(mwSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	signed, err := utils.IssueToken(mwSecret, 9, "jane@example.com", "customer", 1, -time.Minute)
	require.NoError(t, err)

	rec := doRequest(t, middleware.JWTAuth(mwSecret), "Bearer "+signed.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTAuthDowngradesToGuest(t *testing.T) {
	rec := doRequest(t, middleware.OptionalJWTAuth(mwSecret), "Bearer not-a-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest", rec.Body.String())
}

func TestOptionalJWTAuthKeepsIdentity(t *testing.T) {
	signed, err := utils.IssueToken(mwSecret, 9, "jane@example.com", "customer", 1, time.Minute)
	require.NoError(t, err)

	rec := doRequest(t, middleware.OptionalJWTAuth(mwSecret), "Bearer "+signed.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com", rec.Body.String())
}
