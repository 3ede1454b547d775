package utils

import "github.com/google/uuid"

// NewSessionToken mints an opaque, time-ordered identifier for a guest cart
// session.  UUIDv7 keeps tokens unique across instances and roughly sortable
// by creation time, which keeps the carts index friendly.
func NewSessionToken() string {
	t, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		return uuid.NewString()
	}
	return t.String()
}
