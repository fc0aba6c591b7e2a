package middleware

import (
	"context"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"

	"github.com/duynhne/placement-service/internal/core/domain"
)

const (
	identityKey  = "identity"
	sessionIDKey = "session_id"

	// SignInPath is where page requests without a valid session are sent.
	SignInPath = "/signin"
)

// SessionValidator resolves a session id to the signed-in user.
// Unauthenticated reports whether an error from ValidateSession means the
// session is missing, unknown or expired. Any other error is a failure of
// the record store and is answered with 500.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*domain.Identity, error)
	Unauthenticated(err error) bool
}

// PageGuard protects HTML pages: without a valid session the browser is
// redirected to the sign-in page.
func PageGuard(sessions SessionValidator, cookieName string) gin.HandlerFunc {
	return guard(sessions, cookieName, func(c *gin.Context) {
		c.Redirect(http.StatusFound, SignInPath)
		c.Abort()
	})
}

// APIGuard protects JSON endpoints: without a valid session the request is
// rejected with 401 and no redirect.
func APIGuard(sessions SessionValidator, cookieName string) gin.HandlerFunc {
	return guard(sessions, cookieName, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	})
}

func guard(sessions SessionValidator, cookieName string, reject func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			reject(c)
			return
		}

		identity, err := sessions.ValidateSession(c.Request.Context(), sid)
		if err != nil {
			logger := pkgzerolog.FromContext(c.Request.Context())
			if !sessions.Unauthenticated(err) {
				logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Session lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Session rejected")
			reject(c)
			return
		}

		c.Set(identityKey, *identity)
		c.Set(sessionIDKey, sid)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by a guard.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// SessionIDFrom returns the session id stored by a guard.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
