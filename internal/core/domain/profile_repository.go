package domain

import "context"

// ProfileRow is the one-to-one extension of a user. Absent values are
// stored as empty strings, never NULL.
type ProfileRow struct {
	UserID     int    `json:"-"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumePath string `json:"resume_path"`
}

// ProfileUpsert describes a profile write. ResumePath is nil when the
// request carried no new upload; the stored reference is then kept.
type ProfileUpsert struct {
	UserID     int
	FullName   string
	Email      string
	Phone      string
	ResumePath *string
}

// ProfileRepository defines the data-access contract for profiles.
type ProfileRepository interface {
	// GetByUserID returns the profile of the user.
	// Returns (nil, nil) when the user has no profile yet.
	GetByUserID(ctx context.Context, userID int) (*ProfileRow, error)

	// Upsert inserts the profile when absent and updates it in place
	// otherwise, atomically, and returns the stored row.
	Upsert(ctx context.Context, p ProfileUpsert) (*ProfileRow, error)
}
