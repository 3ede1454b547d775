// Package service contains the auth/session core and the cart engine.
// Services accept plain inputs, call repositories, and report failures as
// *Error values whose Kind maps onto an HTTP status at the handler layer.
package service

import "fmt"

// Kind classifies a service failure.
type Kind int

const (
	KindNotFound Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindConflict
	KindValidation
	KindInternal
)

// FieldError carries one per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the failure type every service operation returns.  Internal
// errors wrap the underlying cause for server-side logs; the wrapped cause
// is never serialized to clients.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// Validation reports one or more per-field failures.
func Validation(details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

// Internal wraps a storage or infrastructure failure.  The message shown to
// callers stays opaque; err is preserved for logging.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}
