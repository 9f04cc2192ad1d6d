// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer.
package queue

// UserRegisteredQueue is the durable queue registration events go to.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published after an account has been created. It
// carries enough to audit the registration without querying the store.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}
