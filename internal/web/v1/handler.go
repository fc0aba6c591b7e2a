package v1

import (
	"errors"
	"net/http"
	"time"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"

	logicv1 "github.com/duynhne/placement-service/internal/logic/v1"
	"github.com/duynhne/placement-service/middleware"
)

// Options carries the HTTP-level settings the handlers need.
type Options struct {
	CookieName     string
	CookieSecure   bool
	SessionTTL     time.Duration
	MaxUploadBytes int64
	StaticDir      string
}

// Handler groups HTTP handlers for the placement portal API v1.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	auth     *logicv1.AuthService
	profiles *logicv1.ProfileService
	portal   *logicv1.PortalService
	opts     Options

	// guarded holds the static file names served only behind PageGuard.
	guarded map[string]struct{}
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, profiles *logicv1.ProfileService, portal *logicv1.PortalService, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{auth: auth, profiles: profiles, portal: portal, opts: opts, guarded: map[string]struct{}{}}
}

// RegisterRoutes registers every portal route on rg. Protected JSON routes
// sit behind APIGuard, protected pages behind PageGuard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Home)
	rg.GET("/verify-email", h.VerifyEmail)
	rg.GET("/signin", h.page("signin.html"))
	rg.GET("/signup", h.page("signup.html"))

	pages := rg.Group("", middleware.PageGuard(h.auth, h.opts.CookieName))
	{
		pages.GET("/profile", h.guardedPage("profile.html"))
		pages.GET("/apply", h.guardedPage("apply.html"))
		pages.GET("/stories/new", h.guardedPage("new-story.html"))
	}

	api := rg.Group("/api")
	{
		api.POST("/signup", h.SignUp)
		api.POST("/signin", h.SignIn)
		api.POST("/logout", h.Logout)
		api.GET("/auth/status", h.AuthStatus)
		api.GET("/stories", h.ListStories)
		api.POST("/chatbot", h.Chat)
	}

	protected := api.Group("", middleware.APIGuard(h.auth, h.opts.CookieName))
	{
		protected.GET("/profile", h.GetProfile)
		protected.POST("/profile", h.UpdateProfile)
		protected.POST("/upload", h.UploadResume)
		protected.GET("/applications", h.ListApplications)
		protected.POST("/applications", h.Apply)
		protected.POST("/stories", h.PostStory)
	}
}

// respondError maps logic errors to status codes. Storage and upstream
// details stay in the log.
func respondError(c *gin.Context, err error, msg string) {
	logger := pkgzerolog.FromContext(c.Request.Context())
	var ve *logicv1.ValidationError

	switch {
	case errors.As(err, &ve):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": ve.Problems})
	case errors.Is(err, logicv1.ErrValidationFailed):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	case errors.Is(err, logicv1.ErrDuplicateCredential):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
	case errors.Is(err, logicv1.ErrUserNotFound):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, logicv1.ErrUnverified):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before signing in"})
	case errors.Is(err, logicv1.ErrBadCredential):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
	case errors.Is(err, logicv1.ErrUnauthenticated):
		logger.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, logicv1.ErrUpstreamFailure):
		logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not generate response"})
	default:
		logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
