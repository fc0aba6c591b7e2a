package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	db DB
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db DB) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, COALESCE(verification_token, ''), verified, created_at`

func scanUser(row pgx.Row) (*domain.UserRow, error) {
	var u domain.UserRow
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.VerificationToken, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and its empty profile in one transaction.
func (r *PgxUserRepository) Create(ctx context.Context, u domain.NewUser) (id int, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `INSERT INTO users (username, email, password_hash, verification_token, verified)
		VALUES ($1, $2, $3, $4, FALSE) RETURNING id`
	if err = tx.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash, u.VerificationToken).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	profileQuery := `INSERT INTO profiles (user_id, email) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`
	if _, err = tx.Exec(ctx, profileQuery, id, u.Email); err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetByUsername returns the user matching the given username.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByUsername(ctx context.Context, username string) (*domain.UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// GetByVerificationToken returns the user holding the unredeemed token.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	return scanUser(r.db.QueryRow(ctx, query, token))
}

// MarkVerified verifies the user and clears the token. Only a row that
// still holds a token is touched, so a second call returns false.
func (r *PgxUserRepository) MarkVerified(ctx context.Context, userID int) (bool, error) {
	query := `UPDATE users SET verified = TRUE, verification_token = NULL
		WHERE id = $1 AND verification_token IS NOT NULL`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateLastLogin sets the last_login timestamp to now for the given user.
func (r *PgxUserRepository) UpdateLastLogin(ctx context.Context, userID int) error {
	query := `UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
