package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/duynhne/placement-service/internal/core/domain"
)

// MemoryStore is an in-process record store. It backs DB_DRIVER=memory
// and the service and handler tests. One mutex guards every table, so
// each repository call is atomic with respect to all others.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	users       map[int]*domain.UserRow
	lastLogin   map[int]time.Time
	sessions    map[string]memorySession
	profiles    map[int]domain.ProfileRow
	apps        []domain.ApplicationRow
	stories     []domain.StoryRow
	nextUserID  int
	nextAppID   int
	nextStoryID int
}

type memorySession struct {
	userID    int
	createdAt time.Time
	expiresAt time.Time
}

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock returns an empty store stamping rows with now().
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now:       now,
		users:     make(map[int]*domain.UserRow),
		lastLogin: make(map[int]time.Time),
		sessions:  make(map[string]memorySession),
		profiles:  make(map[int]domain.ProfileRow),
	}
}

// Users, Sessions, Profiles, Applications and Stories return repositories
// sharing the store's state.
func (m *MemoryStore) Users() *MemoryUserRepository               { return &MemoryUserRepository{m} }
func (m *MemoryStore) Sessions() *MemorySessionRepository         { return &MemorySessionRepository{m} }
func (m *MemoryStore) Profiles() *MemoryProfileRepository         { return &MemoryProfileRepository{m} }
func (m *MemoryStore) Applications() *MemoryApplicationRepository { return &MemoryApplicationRepository{m} }
func (m *MemoryStore) Stories() *MemoryStoryRepository            { return &MemoryStoryRepository{m} }

// MemoryUserRepository implements domain.UserRepository on a MemoryStore.
type MemoryUserRepository struct{ s *MemoryStore }

// Create inserts a user and its empty profile.
func (r *MemoryUserRepository) Create(_ context.Context, u domain.NewUser) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, domain.ErrDuplicate
		}
		if u.VerificationToken != "" && existing.VerificationToken == u.VerificationToken {
			return 0, domain.ErrDuplicate
		}
	}

	r.s.nextUserID++
	id := r.s.nextUserID
	r.s.users[id] = &domain.UserRow{
		ID:                id,
		Username:          u.Username,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		VerificationToken: u.VerificationToken,
		CreatedAt:         r.s.now(),
	}
	r.s.profiles[id] = domain.ProfileRow{UserID: id, Email: u.Email}
	return id, nil
}

// GetByUsername returns (nil, nil) when no user matches.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.UserRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByVerificationToken returns (nil, nil) when no pending token matches.
func (r *MemoryUserRepository) GetByVerificationToken(_ context.Context, token string) (*domain.UserRow, error) {
	if token == "" {
		return nil, nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// MarkVerified verifies the user and clears the token. It reports false
// when the user was already verified.
func (r *MemoryUserRepository) MarkVerified(_ context.Context, userID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok || u.VerificationToken == "" {
		return false, nil
	}
	u.Verified = true
	u.VerificationToken = ""
	return true, nil
}

// UpdateLastLogin stamps the store clock on the user.
func (r *MemoryUserRepository) UpdateLastLogin(_ context.Context, userID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastLogin[userID] = r.s.now()
	return nil
}

// MemorySessionRepository implements domain.SessionRepository on a MemoryStore.
type MemorySessionRepository struct{ s *MemoryStore }

// Create stores a session.
func (r *MemorySessionRepository) Create(_ context.Context, userID int, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.sessions[token]; taken {
		return domain.ErrDuplicate
	}
	r.s.sessions[token] = memorySession{userID: userID, createdAt: r.s.now(), expiresAt: expiresAt}
	return nil
}

// GetUserByToken returns (nil, nil) for unknown tokens.
func (r *MemorySessionRepository) GetUserByToken(_ context.Context, token string) (*domain.SessionRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, nil
	}
	u, ok := r.s.users[sess.userID]
	if !ok {
		return nil, nil
	}
	return &domain.SessionRow{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: sess.createdAt,
		ExpiresAt: sess.expiresAt,
	}, nil
}

// Delete removes the session; unknown tokens are ignored.
func (r *MemorySessionRepository) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, token)
	return nil
}

// MemoryProfileRepository implements domain.ProfileRepository on a MemoryStore.
type MemoryProfileRepository struct{ s *MemoryStore }

// GetByUserID returns (nil, nil) when the user has no profile.
func (r *MemoryProfileRepository) GetByUserID(_ context.Context, userID int) (*domain.ProfileRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Upsert creates or overwrites the profile, keeping the resume path unless
// a new one is given.
func (r *MemoryProfileRepository) Upsert(_ context.Context, in domain.ProfileUpsert) (*domain.ProfileRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.profiles[in.UserID]
	p.UserID = in.UserID
	p.FullName = in.FullName
	p.Email = in.Email
	p.Phone = in.Phone
	if in.ResumePath != nil {
		p.ResumePath = *in.ResumePath
	}
	r.s.profiles[in.UserID] = p
	return &p, nil
}

// MemoryApplicationRepository implements domain.ApplicationRepository on a MemoryStore.
type MemoryApplicationRepository struct{ s *MemoryStore }

// Create records an application.
func (r *MemoryApplicationRepository) Create(_ context.Context, userID int, companyName string) (*domain.ApplicationRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextAppID++
	row := domain.ApplicationRow{ID: r.s.nextAppID, UserID: userID, CompanyName: companyName, CreatedAt: r.s.now()}
	r.s.apps = append(r.s.apps, row)
	return &row, nil
}

// ListByUser returns the user's applications, newest first.
func (r *MemoryApplicationRepository) ListByUser(_ context.Context, userID int) ([]domain.ApplicationRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.ApplicationRow{}
	for i := len(r.s.apps) - 1; i >= 0; i-- {
		if r.s.apps[i].UserID == userID {
			out = append(out, r.s.apps[i])
		}
	}
	return out, nil
}

// MemoryStoryRepository implements domain.StoryRepository on a MemoryStore.
type MemoryStoryRepository struct{ s *MemoryStore }

// Create publishes a story.
func (r *MemoryStoryRepository) Create(_ context.Context, userID int, title, content string) (*domain.StoryRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	author := ""
	if u, ok := r.s.users[userID]; ok {
		author = u.Username
	}
	r.s.nextStoryID++
	row := domain.StoryRow{
		ID:        r.s.nextStoryID,
		UserID:    userID,
		Author:    author,
		Title:     title,
		Content:   content,
		CreatedAt: r.s.now(),
	}
	r.s.stories = append(r.s.stories, row)
	return &row, nil
}

// List returns every story, newest first.
func (r *MemoryStoryRepository) List(_ context.Context) ([]domain.StoryRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := slices.Clone(r.s.stories)
	slices.Reverse(out)
	if out == nil {
		out = []domain.StoryRow{}
	}
	return out, nil
}
