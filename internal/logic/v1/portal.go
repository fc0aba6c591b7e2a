package v1

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/placement-service/internal/chatbot"
	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/middleware"
)

// PortalService covers the features around the account core: drive
// applications, the success-stories board and the chatbot.
type PortalService struct {
	apps    domain.ApplicationRepository
	stories domain.StoryRepository
	bot     chatbot.Responder
}

// NewPortalService creates a PortalService.
func NewPortalService(apps domain.ApplicationRepository, stories domain.StoryRepository, bot chatbot.Responder) *PortalService {
	return &PortalService{apps: apps, stories: stories, bot: bot}
}

// Apply records a drive application for userID.
func (s *PortalService) Apply(ctx context.Context, userID int, req domain.ApplicationRequest) (*domain.ApplicationRow, error) {
	ctx, span := middleware.StartSpan(ctx, "portal.apply", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", strconv.Itoa(userID)),
	))
	defer span.End()

	in := applicationInput{CompanyName: strings.TrimSpace(req.CompanyName)}
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	row, err := s.apps.Create(ctx, userID, in.CompanyName)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: create application: %w", ErrStorageFailure, err)
	}
	return row, nil
}

// ListApplications returns userID's applications, newest first.
func (s *PortalService) ListApplications(ctx context.Context, userID int) ([]domain.ApplicationRow, error) {
	ctx, span := middleware.StartSpan(ctx, "portal.list_applications")
	defer span.End()

	rows, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: list applications: %w", ErrStorageFailure, err)
	}
	return rows, nil
}

// ListStories returns the board, most recent first.
func (s *PortalService) ListStories(ctx context.Context) ([]domain.StoryRow, error) {
	ctx, span := middleware.StartSpan(ctx, "portal.list_stories")
	defer span.End()

	rows, err := s.stories.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: list stories: %w", ErrStorageFailure, err)
	}
	return rows, nil
}

// PostStory publishes a success story authored by userID.
func (s *PortalService) PostStory(ctx context.Context, userID int, req domain.StoryRequest) (*domain.StoryRow, error) {
	ctx, span := middleware.StartSpan(ctx, "portal.post_story", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", strconv.Itoa(userID)),
	))
	defer span.End()

	in := storyInput{Title: strings.TrimSpace(req.Title), Content: strings.TrimSpace(req.Content)}
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("post story: %w", err)
	}

	row, err := s.stories.Create(ctx, userID, in.Title, in.Content)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: create story: %w", ErrStorageFailure, err)
	}
	return row, nil
}

// Chat forwards message to the configured responder.
func (s *PortalService) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "portal.chat", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	in := chatInput{Message: strings.TrimSpace(req.Message)}
	if err := validateStruct(in); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	reply, err := s.bot.Reply(ctx, in.Message)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: chatbot: %w", ErrUpstreamFailure, err)
	}
	return reply, nil
}
