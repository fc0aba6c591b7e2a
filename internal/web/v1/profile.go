package v1

import (
	"errors"
	"mime/multipart"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/placement-service/internal/core/domain"
	logicv1 "github.com/duynhne/placement-service/internal/logic/v1"
	"github.com/duynhne/placement-service/middleware"
)

const resumeField = "resume"

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	identity, _ := middleware.IdentityFrom(c)

	p, err := h.profiles.GetProfile(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Get profile failed")
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProfile handles POST /api/profile. Contact fields come as form
// values (or JSON); a "resume" file part is optional.
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)
	identity, _ := middleware.IdentityFrom(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	var form domain.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid profile form")
		rejectUpload(c, err)
		return
	}

	fh, err := optionalFile(c)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid resume upload")
		rejectUpload(c, err)
		return
	}

	var upload *logicv1.Upload
	if fh != nil {
		f, err := fh.Open()
		if err != nil {
			span.RecordError(err)
			respondError(c, err, "Open upload failed")
			return
		}
		defer f.Close()
		upload = &logicv1.Upload{Filename: fh.Filename, Content: f}
	}

	p, err := h.profiles.UpdateProfile(ctx, identity.UserID, form, upload)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Update profile failed")
		return
	}

	logger.Info().Int("user_id", identity.UserID).Bool("resume_uploaded", upload != nil).Msg("Profile updated")
	c.JSON(http.StatusOK, p)
}

// UploadResume handles POST /api/upload: the file is stored and its path
// returned, the profile is left alone.
func (h *Handler) UploadResume(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)
	identity, _ := middleware.IdentityFrom(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	fh, err := optionalFile(c)
	if err != nil {
		span.RecordError(err)
		rejectUpload(c, err)
		return
	}
	if fh == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded."})
		return
	}

	f, err := fh.Open()
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Open upload failed")
		return
	}
	defer f.Close()

	path, err := h.profiles.UploadResume(ctx, identity.UserID, logicv1.Upload{Filename: fh.Filename, Content: f})
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Upload failed")
		return
	}

	logger.Info().Str("path", path).Msg("Resume uploaded")
	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "path": path})
}

// optionalFile returns the resume part, or nil when the request carries none.
func optionalFile(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(resumeField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return fh, err
}

func rejectUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
}
