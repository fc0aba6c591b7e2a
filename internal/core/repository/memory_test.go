package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/placement-service/internal/core/domain"
)

func TestMemoryUsers_DuplicateUsernameOrEmail(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()

	_, err := users.Create(ctx, domain.NewUser{Username: "alice", Email: "a@x.edu", VerificationToken: "t1"})
	require.NoError(t, err)

	_, err = users.Create(ctx, domain.NewUser{Username: "alice", Email: "other@x.edu", VerificationToken: "t2"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = users.Create(ctx, domain.NewUser{Username: "alice2", Email: "a@x.edu", VerificationToken: "t3"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMemoryUsers_CreateSeedsProfile(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Users().Create(ctx, domain.NewUser{Username: "alice", Email: "a@x.edu", VerificationToken: "t1"})
	require.NoError(t, err)

	p, err := store.Profiles().GetByUserID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.ProfileRow{UserID: id, Email: "a@x.edu"}, *p)
}

func TestMemoryUsers_MarkVerifiedOnce(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()

	id, err := users.Create(ctx, domain.NewUser{Username: "alice", Email: "a@x.edu", VerificationToken: "t1"})
	require.NoError(t, err)

	ok, err := users.MarkVerified(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = users.MarkVerified(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := users.GetByVerificationToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestMemoryProfiles_UpsertKeepsResume(t *testing.T) {
	profiles := NewMemoryStore().Profiles()
	ctx := context.Background()
	path := "uploads/1-cv.pdf"

	_, err := profiles.Upsert(ctx, domain.ProfileUpsert{UserID: 1, FullName: "A", ResumePath: &path})
	require.NoError(t, err)

	got, err := profiles.Upsert(ctx, domain.ProfileUpsert{UserID: 1, FullName: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", got.FullName)
	assert.Equal(t, path, got.ResumePath)
}

func TestMemoryProfiles_ConcurrentUpsertsLeaveOneRow(t *testing.T) {
	store := NewMemoryStore()
	profiles := store.Profiles()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = profiles.Upsert(ctx, domain.ProfileUpsert{UserID: 1, FullName: fmt.Sprintf("name-%d", i)})
		}()
	}
	wg.Wait()

	assert.Len(t, store.profiles, 1)
}

func TestMemorySessions_LookupAndDelete(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	id, err := store.Users().Create(ctx, domain.NewUser{Username: "alice", Email: "a@x.edu", VerificationToken: "t1"})
	require.NoError(t, err)
	require.NoError(t, store.Sessions().Create(ctx, id, "sid", now.Add(time.Hour)))

	row, err := store.Sessions().GetUserByToken(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "alice", row.Username)
	assert.Equal(t, now, row.CreatedAt)

	require.NoError(t, store.Sessions().Delete(ctx, "sid"))
	row, err = store.Sessions().GetUserByToken(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMemoryStories_NewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Users().Create(ctx, domain.NewUser{Username: "alice", Email: "a@x.edu", VerificationToken: "t1"})
	require.NoError(t, err)

	_, err = store.Stories().Create(ctx, id, "first", "one")
	require.NoError(t, err)
	_, err = store.Stories().Create(ctx, id, "second", "two")
	require.NoError(t, err)

	list, err := store.Stories().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "alice", list[0].Author)
}
