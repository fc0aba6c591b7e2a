package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	db DB
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(db DB) *PgxSessionRepository {
	return &PgxSessionRepository{db: db}
}

// Create inserts a new session for the given user.
func (r *PgxSessionRepository) Create(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, userID, token, expiresAt)
	return err
}

// GetUserByToken looks up the session by token and returns the associated
// user data together with the session expiry time.
// Returns (nil, nil) when the token does not match any session.
func (r *PgxSessionRepository) GetUserByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	query := `
		SELECT u.id, u.username, u.email, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = $1
	`

	var row domain.SessionRow
	err := r.db.QueryRow(ctx, query, token).Scan(
		&row.UserID, &row.Username, &row.Email, &row.CreatedAt, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Delete removes the session row.
func (r *PgxSessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.Exec(ctx, query, token)
	return err
}
