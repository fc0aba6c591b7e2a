package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/placement-service/internal/chatbot"
	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/internal/core/repository"
)

type brokenBot struct{}

func (brokenBot) Reply(context.Context, string) (string, error) {
	return "", errors.New("503 from model")
}

func newPortal(t *testing.T, bot chatbot.Responder) (*PortalService, int) {
	t.Helper()
	store := repository.NewMemoryStore()
	id, err := store.Users().Create(context.Background(), domain.NewUser{Username: "alice", Email: "alice@x.com", VerificationToken: "t"})
	require.NoError(t, err)
	return NewPortalService(store.Applications(), store.Stories(), bot), id
}

func TestPortal_ApplyAndList(t *testing.T) {
	svc, uid := newPortal(t, chatbot.NewRuleResponder())
	ctx := context.Background()

	_, err := svc.Apply(ctx, uid, domain.ApplicationRequest{CompanyName: "Initech"})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, uid, domain.ApplicationRequest{CompanyName: "Globex"})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, uid, domain.ApplicationRequest{CompanyName: "   "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	apps, err := svc.ListApplications(ctx, uid)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Globex", apps[0].CompanyName)
}

func TestPortal_Stories(t *testing.T) {
	svc, uid := newPortal(t, chatbot.NewRuleResponder())
	ctx := context.Background()

	_, err := svc.PostStory(ctx, uid, domain.StoryRequest{Title: "Placed!", Content: "Got an offer from Initech"})
	require.NoError(t, err)

	_, err = svc.PostStory(ctx, uid, domain.StoryRequest{Title: "No content"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	stories, err := svc.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "alice", stories[0].Author)
}

func TestPortal_Chat(t *testing.T) {
	svc, _ := newPortal(t, chatbot.NewRuleResponder())

	reply, err := svc.Chat(context.Background(), domain.ChatRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you today?", reply)

	_, err = svc.Chat(context.Background(), domain.ChatRequest{Message: " "})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPortal_ChatUpstreamFailure(t *testing.T) {
	svc, _ := newPortal(t, brokenBot{})

	_, err := svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.NotErrorIs(t, err, ErrValidationFailed)
}
