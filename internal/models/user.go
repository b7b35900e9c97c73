package models

import (
	"time"
)

// User is the single local user record that owns all events and categories.
// Multi-user sharing is out of scope; the row exists so ownership is explicit
// in the schema and so the local API has a password hash to authenticate
// against.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Goals        string    `json:"goals,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
