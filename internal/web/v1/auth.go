package v1

import (
	"errors"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/placement-service/internal/core/domain"
	logicv1 "github.com/duynhne/placement-service/internal/logic/v1"
	"github.com/duynhne/placement-service/middleware"
)

// SignUp handles POST /api/signup.
func (h *Handler) SignUp(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	user, err := h.auth.SignUp(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Signup failed")
		return
	}

	logger.Info().Str("user_id", user.ID).Msg("Signup successful")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful. Check your email to verify your account.",
		"user":    user,
	})
}

// VerifyEmail handles GET /verify-email?token=. It answers in plain text
// because it is opened from an email link.
func (h *Handler) VerifyEmail(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	err := h.auth.VerifyEmail(ctx, c.Query("token"))
	switch {
	case err == nil:
		logger.Info().Msg("Email verified")
		c.String(http.StatusOK, "Email verified successfully. You can now sign in.")
	case errors.Is(err, logicv1.ErrInvalidVerificationLink):
		logger.Warn().Err(err).Msg("Verification rejected")
		c.String(http.StatusBadRequest, "Invalid or expired verification link.")
	default:
		span.RecordError(err)
		logger.Error().Err(err).Msg("Verification failed")
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// SignIn handles POST /api/signin. On success the session id is set as an
// HttpOnly cookie and the client is pointed at /profile.
func (h *Handler) SignIn(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.SigninRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	result, err := h.auth.SignIn(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Signin failed")
		return
	}

	h.setSessionCookie(c, result.SessionID, int(h.opts.SessionTTL.Seconds()))

	logger.Info().Str("user_id", result.User.ID).Msg("Signin successful")
	c.JSON(http.StatusOK, domain.SigninResponse{
		Message:  "Signed in",
		Redirect: "/profile",
		User:     result.User,
	})
}

// Logout handles POST /api/logout. The cookie is cleared even when the
// session was already gone.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	sid, _ := c.Cookie(h.opts.CookieName)
	err := h.auth.Logout(ctx, sid)
	h.setSessionCookie(c, "", -1)

	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Logout failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// AuthStatus handles GET /api/auth/status.
func (h *Handler) AuthStatus(c *gin.Context) {
	sid, _ := c.Cookie(h.opts.CookieName)
	c.JSON(http.StatusOK, h.auth.AuthStatus(c.Request.Context(), sid))
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.CookieSecure, true)
}
