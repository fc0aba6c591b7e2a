package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// PgxApplicationRepository implements domain.ApplicationRepository.
type PgxApplicationRepository struct {
	db DB
}

// NewApplicationRepository creates an application repository over db.
func NewApplicationRepository(db DB) *PgxApplicationRepository {
	return &PgxApplicationRepository{db: db}
}

// Create inserts an application.
func (r *PgxApplicationRepository) Create(ctx context.Context, userID int, companyName string) (*domain.ApplicationRow, error) {
	query := `INSERT INTO applications (user_id, company_name) VALUES ($1, $2) RETURNING id, created_at`

	row := domain.ApplicationRow{UserID: userID, CompanyName: companyName}
	if err := r.db.QueryRow(ctx, query, userID, companyName).Scan(&row.ID, &row.CreatedAt); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByUser returns the user's applications, newest first.
func (r *PgxApplicationRepository) ListByUser(ctx context.Context, userID int) ([]domain.ApplicationRow, error) {
	query := `SELECT id, user_id, company_name, created_at FROM applications
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ApplicationRow, error) {
		var a domain.ApplicationRow
		err := row.Scan(&a.ID, &a.UserID, &a.CompanyName, &a.CreatedAt)
		return a, err
	})
}
