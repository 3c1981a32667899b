package models

import (
	"time"
)

// User is the identity row in Postgres. Auth responses return it to its owner;
// the password hash never leaves the server.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`

	// Never serialized
	PasswordHash string `json:"-"`
}
