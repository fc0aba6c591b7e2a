package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// PgxProfileRepository implements domain.ProfileRepository using pgxpool.
type PgxProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new PgxProfileRepository.
func NewProfileRepository(db DB) *PgxProfileRepository {
	return &PgxProfileRepository{db: db}
}

// GetByUserID returns the profile or (nil, nil) when the user has none.
func (r *PgxProfileRepository) GetByUserID(ctx context.Context, userID int) (*domain.ProfileRow, error) {
	query := `SELECT user_id, full_name, email, phone, resume_path FROM profiles WHERE user_id = $1`

	var p domain.ProfileRow
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.Email, &p.Phone, &p.ResumePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Upsert writes the profile in a single statement so concurrent updates for
// the same user serialize on the primary key. $5 carries whether a new
// resume was uploaded; without one the stored resume_path is kept.
func (r *PgxProfileRepository) Upsert(ctx context.Context, p domain.ProfileUpsert) (*domain.ProfileRow, error) {
	query := `
		INSERT INTO profiles (user_id, full_name, email, phone, resume_path)
		VALUES ($1, $2, $3, $4, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name   = EXCLUDED.full_name,
			email       = EXCLUDED.email,
			phone       = EXCLUDED.phone,
			resume_path = CASE WHEN $5 THEN EXCLUDED.resume_path ELSE profiles.resume_path END
		RETURNING user_id, full_name, email, phone, resume_path
	`

	hasResume := p.ResumePath != nil
	resumePath := ""
	if hasResume {
		resumePath = *p.ResumePath
	}

	var out domain.ProfileRow
	err := r.db.QueryRow(ctx, query, p.UserID, p.FullName, p.Email, p.Phone, hasResume, resumePath).
		Scan(&out.UserID, &out.FullName, &out.Email, &out.Phone, &out.ResumePath)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
