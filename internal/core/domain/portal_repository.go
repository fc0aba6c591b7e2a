package domain

import (
	"context"
	"time"
)

// ApplicationRow is a drive application submitted by a student.
type ApplicationRow struct {
	ID          int       `json:"id"`
	UserID      int       `json:"-"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoryRow is an entry on the success-stories board.
type StoryRow struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplicationRepository stores drive applications.
type ApplicationRepository interface {
	Create(ctx context.Context, userID int, companyName string) (*ApplicationRow, error)
	// ListByUser returns the user's applications, newest first.
	ListByUser(ctx context.Context, userID int) ([]ApplicationRow, error)
}

// StoryRepository stores success stories.
type StoryRepository interface {
	Create(ctx context.Context, userID int, title, content string) (*StoryRow, error)
	// List returns every story, most recent first.
	List(ctx context.Context) ([]StoryRow, error)
}
