package v1

import (
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/middleware"
)

// Chat handles POST /api/chatbot.
func (h *Handler) Chat(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.portal.Chat(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Chatbot failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// Apply handles POST /api/applications.
func (h *Handler) Apply(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)
	identity, _ := middleware.IdentityFrom(c)

	var req domain.ApplicationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	row, err := h.portal.Apply(ctx, identity.UserID, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Application failed")
		return
	}

	logger.Info().Int("application_id", row.ID).Str("company", row.CompanyName).Msg("Application submitted")
	c.JSON(http.StatusCreated, row)
}

// ListApplications handles GET /api/applications.
func (h *Handler) ListApplications(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	rows, err := h.portal.ListApplications(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err, "List applications failed")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListStories handles GET /api/stories. It is public.
func (h *Handler) ListStories(c *gin.Context) {
	rows, err := h.portal.ListStories(c.Request.Context())
	if err != nil {
		respondError(c, err, "List stories failed")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// PostStory handles POST /api/stories.
func (h *Handler) PostStory(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	identity, _ := middleware.IdentityFrom(c)

	var req domain.StoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	row, err := h.portal.PostStory(ctx, identity.UserID, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Post story failed")
		return
	}

	c.JSON(http.StatusCreated, row)
}
