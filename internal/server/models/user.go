// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored account. Username is unique; PasswordHash holds a
// BCrypt hash and never a plaintext password.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Authorities  []string
	Enabled      bool
	Locked       bool
	CreatedAt    time.Time
}
