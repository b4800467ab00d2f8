package auth

import "time"

// User represents an account row read for authentication. Account lifecycle
// (registration, password reset) is not managed by this service.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
