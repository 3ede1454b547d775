// Package handler wires HTTP requests to the service layer and shapes
// responses.  Every failure is rendered as the common error envelope
// {"error": {"code", "message", "details?"}}.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/service"
)

type errorBody struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Details []service.FieldError `json:"details,omitempty"`
}

// jsonError writes the error envelope with the given status.
func jsonError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": errorBody{Code: code, Message: message}})
}

// serverError logs a storage or infrastructure failure and answers with an
// opaque 500.  Used by handlers that talk to repositories directly.
func serverError(c echo.Context, err error) error {
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return jsonError(c, http.StatusInternalServerError, "internal", "internal error")
}

// serviceError translates a *service.Error into its HTTP rendering.  Unknown
// error values and internal kinds are logged and returned as an opaque 500.
func serviceError(c echo.Context, err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Printf("handler: unexpected error: %v", err)
		return jsonError(c, http.StatusInternalServerError, "internal", "internal error")
	}

	switch svcErr.Kind {
	case service.KindNotFound:
		return jsonError(c, http.StatusNotFound, "not_found", svcErr.Message)
	case service.KindBadRequest:
		return jsonError(c, http.StatusBadRequest, "bad_request", svcErr.Message)
	case service.KindUnauthorized:
		return jsonError(c, http.StatusUnauthorized, "unauthorized", svcErr.Message)
	case service.KindForbidden:
		return jsonError(c, http.StatusForbidden, "forbidden", svcErr.Message)
	case service.KindConflict:
		return jsonError(c, http.StatusConflict, "conflict", svcErr.Message)
	case service.KindValidation:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": errorBody{
			Code:    "validation_failed",
			Message: svcErr.Message,
			Details: svcErr.Details,
		}})
	default:
		log.Printf("handler: %v", svcErr)
		return jsonError(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
