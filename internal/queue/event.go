// Package queue defines the storefront event payloads exchanged over the
// message broker, plus the publisher and the background consumer.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// eventQueueName is the single durable queue carrying all storefront events.
const eventQueueName = "storefront.events"

// Event types carried in the envelope.
const (
	TypeUserRegistered = "user.registered"
	TypeCartMerged     = "cart.merged"
)

// Envelope wraps every published event with an id, type and timestamp so
// consumers can dispatch without sniffing payload fields.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// UserRegisteredEvent is published after a successful registration.  It
// carries enough for downstream welcome mails or analytics without querying
// the primary database.
type UserRegisteredEvent struct {
	UserID  uint64 `json:"user_id"`
	StoreID uint64 `json:"store_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// CartMergedEvent is published when a guest cart is folded into a user cart
// during login.
type CartMergedEvent struct {
	GuestCartID uint64 `json:"guest_cart_id"`
	UserCartID  uint64 `json:"user_cart_id"`
	UserID      uint64 `json:"user_id"`
	StoreID     uint64 `json:"store_id"`
	ItemsMoved  int    `json:"items_moved"`
}

func newEnvelope(eventType string, data interface{}) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Data:       raw,
	}, nil
}
