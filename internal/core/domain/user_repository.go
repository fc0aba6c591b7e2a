package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by repositories when a unique constraint
// (username, email) rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID                int
	Username          string
	Email             string
	PasswordHash      string
	VerificationToken string // empty once redeemed
	Verified          bool
	CreatedAt         time.Time
}

// NewUser carries the fields written by signup.
type NewUser struct {
	Username          string
	Email             string
	PasswordHash      string
	VerificationToken string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type UserRepository interface {
	// Create inserts a new unverified user together with its empty profile
	// and returns the generated user ID. Returns ErrDuplicate when the
	// username or email is taken.
	Create(ctx context.Context, u NewUser) (int, error)

	// GetByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*UserRow, error)

	// GetByVerificationToken returns the user holding the given unredeemed
	// token. Returns (nil, nil) when no user is found.
	GetByVerificationToken(ctx context.Context, token string) (*UserRow, error)

	// MarkVerified flips verified to true and clears the token.
	// Returns false when the user does not exist or was already verified.
	MarkVerified(ctx context.Context, userID int) (bool, error)

	// UpdateLastLogin sets the last_login timestamp to now for the given user.
	UpdateLastLogin(ctx context.Context, userID int) error
}
