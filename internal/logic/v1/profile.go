package v1

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/internal/storage"
	"github.com/duynhne/placement-service/middleware"
)

// Upload is a single file received with a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileService reads and upserts student profiles.
type ProfileService struct {
	profiles domain.ProfileRepository
	files    storage.FileStore
}

// NewProfileService creates a ProfileService storing uploads in files.
func NewProfileService(profiles domain.ProfileRepository, files storage.FileStore) *ProfileService {
	return &ProfileService{profiles: profiles, files: files}
}

// GetProfile returns the stored profile, or an all-empty one when the user
// has none.
func (s *ProfileService) GetProfile(ctx context.Context, userID int) (*domain.ProfileRow, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", strconv.Itoa(userID)),
	))
	defer span.End()

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: get profile: %w", ErrStorageFailure, err)
	}
	if p == nil {
		span.SetAttributes(attribute.Bool("profile.exists", false))
		return &domain.ProfileRow{UserID: userID}, nil
	}
	return p, nil
}

// UpdateProfile validates the contact fields, stores the upload if there
// is one, then upserts. The stored resume path changes only when upload
// is non-nil.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int, form domain.ProfileForm, upload *Upload) (*domain.ProfileRow, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", strconv.Itoa(userID)),
		attribute.Bool("profile.has_upload", upload != nil),
	))
	defer span.End()

	in := profileInput{
		FullName: strings.TrimSpace(form.FullName),
		Email:    strings.TrimSpace(form.Email),
		Phone:    strings.TrimSpace(form.Phone),
	}
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	var resumePath *string
	if upload != nil {
		path, err := s.saveUpload(ctx, userID, *upload)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		resumePath = &path
	}

	p, err := s.profiles.Upsert(ctx, domain.ProfileUpsert{
		UserID:     userID,
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		ResumePath: resumePath,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: upsert profile: %w", ErrStorageFailure, err)
	}

	span.AddEvent("profile.upserted")
	return p, nil
}

// UploadResume stores a file on its own and returns its path.
func (s *ProfileService) UploadResume(ctx context.Context, userID int, upload Upload) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.upload_resume", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", strconv.Itoa(userID)),
	))
	defer span.End()

	path, err := s.saveUpload(ctx, userID, upload)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return path, nil
}

func (s *ProfileService) saveUpload(ctx context.Context, userID int, upload Upload) (string, error) {
	path, err := s.files.Save(ctx, userID, upload.Filename, upload.Content)
	if err != nil {
		return "", fmt.Errorf("%w: save upload %q: %w", ErrStorageFailure, upload.Filename, err)
	}
	return path, nil
}
