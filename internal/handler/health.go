package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness of the API and its backing stores.  The
// database probe decides the overall status; Redis is optional capacity, so
// a down cache only degrades the report.
type HealthHandler struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Check answers 200 while the database responds and 503 once it does not.
func (h *HealthHandler) Check(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK
	checks := echo.Map{}

	dbCtx, dbCancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer dbCancel()
	if err := h.db.PingContext(dbCtx); err != nil {
		checks["database"] = "down"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	if h.rdb != nil {
		rdbCtx, rdbCancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer rdbCancel()
		if err := h.rdb.Ping(rdbCtx).Err(); err != nil {
			checks["redis"] = "down"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "disabled"
	}

	return c.JSON(code, echo.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
