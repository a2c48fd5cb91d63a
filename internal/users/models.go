package users

import (
	"context"
	"errors"
	"time"
)

// User rows are created at registration, outside this service, and are
// immutable afterwards.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is a dependency that must be stubbed in unit tests.
type Store interface {
	ByEmail(ctx context.Context, email string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
}
