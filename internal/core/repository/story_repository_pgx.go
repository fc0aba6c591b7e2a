package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// PgxStoryRepository implements domain.StoryRepository.
type PgxStoryRepository struct {
	db DB
}

// NewStoryRepository creates a story repository over db.
func NewStoryRepository(db DB) *PgxStoryRepository {
	return &PgxStoryRepository{db: db}
}

// Create inserts a story and returns it with the author's username.
func (r *PgxStoryRepository) Create(ctx context.Context, userID int, title, content string) (*domain.StoryRow, error) {
	query := `
		WITH inserted AS (
			INSERT INTO success_stories (user_id, title, content)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, title, content, created_at
		)
		SELECT i.id, i.user_id, u.username, i.title, i.content, i.created_at
		FROM inserted i JOIN users u ON u.id = i.user_id
	`

	var s domain.StoryRow
	err := r.db.QueryRow(ctx, query, userID, title, content).
		Scan(&s.ID, &s.UserID, &s.Author, &s.Title, &s.Content, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every story, most recent first.
func (r *PgxStoryRepository) List(ctx context.Context) ([]domain.StoryRow, error) {
	query := `
		SELECT s.id, s.user_id, u.username, s.title, s.content, s.created_at
		FROM success_stories s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StoryRow, error) {
		var s domain.StoryRow
		err := row.Scan(&s.ID, &s.UserID, &s.Author, &s.Title, &s.Content, &s.CreatedAt)
		return s, err
	})
}
