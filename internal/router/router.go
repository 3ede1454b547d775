// Package router registers every route of the storefront API onto an Echo
// instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront-api/internal/config"
	"github.com/iliyamo/storefront-api/internal/handler"
	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg       config.Config
	DB        *sql.DB
	Redis     *redis.Client
	Auth      *handler.AuthHandler
	Cart      *handler.CartHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Health    *handler.HealthHandler
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Register mounts all routes.  Catalog reads sit behind the Redis response
// cache, auth endpoints behind the token bucket; both degrade to plain
// pass-through when Redis is unavailable.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/healthz", d.Health.Check)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth", middleware.NewTokenBucket(d.RateLimit, d.Redis))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/refresh-access", d.Auth.RefreshAccess)
	auth.POST("/logout", d.Auth.Logout)

	v1.GET("/auth/me", d.Auth.Me, middleware.JWTAuth(d.Cfg.JWTSecret))

	// Cart routes serve guests and users alike; a valid bearer token binds
	// the cart to the user, otherwise the session cookie does.
	cart := v1.Group("/cart", middleware.OptionalJWTAuth(d.Cfg.JWTSecret))
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.AddItem)
	cart.PUT("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)

	catalogCache := middleware.NewRedisCache(d.Cache, d.Redis)
	v1.GET("/products", d.Product.List, catalogCache)
	v1.GET("/products/:slug", d.Product.Get, catalogCache)
	v1.GET("/categories", d.Category.List, catalogCache)
	v1.GET("/categories/:slug", d.Category.Get, catalogCache)

	// Admin mutations.  Authorization is coarse for now: any authenticated
	// role may write; finer per-role rules live with the clients.
	admin := v1.Group("/admin", middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleSuperAdmin, model.RoleStoreAdmin, model.RoleStaff, model.RoleCustomer))
	admin.POST("/products", d.Product.Create)
	admin.PUT("/products/:id", d.Product.Update)
	admin.DELETE("/products/:id", d.Product.Delete)
	admin.POST("/categories", d.Category.Create)
	admin.PUT("/categories/:id", d.Category.Update)
	admin.DELETE("/categories/:id", d.Category.Delete)
}
