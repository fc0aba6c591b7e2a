package core

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/internal/core/repository"
)

// Repositories bundles every data-access contract the logic layer needs.
type Repositories struct {
	Users        domain.UserRepository
	Sessions     domain.SessionRepository
	Profiles     domain.ProfileRepository
	Applications domain.ApplicationRepository
	Stories      domain.StoryRepository
}

// NewPostgresRepositories wires the pgx implementations to one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        repository.NewUserRepository(pool),
		Sessions:     repository.NewSessionRepository(pool),
		Profiles:     repository.NewProfileRepository(pool),
		Applications: repository.NewApplicationRepository(pool),
		Stories:      repository.NewStoryRepository(pool),
	}
}

// NewMemoryRepositories wires every contract to a shared MemoryStore.
func NewMemoryRepositories(store *repository.MemoryStore) Repositories {
	return Repositories{
		Users:        store.Users(),
		Sessions:     store.Sessions(),
		Profiles:     store.Profiles(),
		Applications: store.Applications(),
		Stories:      store.Stories(),
	}
}
