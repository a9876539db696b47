package model

import "time"

// User is a minimal projection of the users table. The table is owned by
// the external auth service; the session engine only references user ids
// from JWT claims. Kept here for the local seeding CLI and tests.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
