package v1

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/internal/notify"
	"github.com/duynhne/placement-service/middleware"
)

// AuthOptions tunes AuthService. Zero values fall back to defaults.
type AuthOptions struct {
	// PublicBaseURL prefixes verification links, e.g. https://portal.example.edu.
	PublicBaseURL string
	SessionTTL    time.Duration
	NotifyTimeout time.Duration
}

// AuthService implements signup, email verification and the session
// lifecycle. It depends on repository interfaces (injected via constructor)
// and MUST NOT access the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	notifier notify.Notifier

	baseURL       string
	sessionTTL    time.Duration
	notifyTimeout time.Duration
	hashCost      int
	now           func() time.Time
}

// SignInResult carries the new session id to the HTTP layer, which sets
// it as a cookie.
type SignInResult struct {
	User      domain.User
	SessionID string
	ExpiresAt time.Time
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, notifier notify.Notifier, opts AuthOptions) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.PublicBaseURL == "" {
		opts.PublicBaseURL = "http://localhost:3000"
	}
	return &AuthService{
		users:         users,
		sessions:      sessions,
		notifier:      notifier,
		baseURL:       strings.TrimRight(opts.PublicBaseURL, "/"),
		sessionTTL:    opts.SessionTTL,
		notifyTimeout: opts.NotifyTimeout,
		hashCost:      bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// SignUp creates an unverified account and sends its verification link.
// A failed delivery is logged but does not undo the signup.
func (s *AuthService) SignUp(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.signup", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	in := signupInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	if err := validateStruct(in); err != nil {
		middleware.RecordAuthEvent("signup", "invalid")
		return nil, fmt.Errorf("sign up %q: %w", in.Username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("sign up %q: %w", in.Username, &ValidationError{Problems: []string{"password is too long"}})
		}
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := newToken()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	userID, err := s.users.Create(ctx, domain.NewUser{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      string(hash),
		VerificationToken: token,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			span.SetAttributes(attribute.Bool("signup.success", false))
			middleware.RecordAuthEvent("signup", "duplicate")
			return nil, fmt.Errorf("sign up %q: %w", in.Username, ErrDuplicateCredential)
		}
		span.RecordError(err)
		middleware.RecordAuthEvent("signup", "error")
		return nil, fmt.Errorf("%w: create user: %w", ErrStorageFailure, err)
	}

	s.sendVerification(ctx, in.Email, token)

	user := &domain.User{
		ID:       strconv.Itoa(userID),
		Username: in.Username,
		Email:    in.Email,
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("signup.success", true),
	)
	span.AddEvent("user.registered")
	middleware.RecordAuthEvent("signup", "success")

	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, email, token string) {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	msg := notify.Verification{
		RecipientEmail:   email,
		VerificationLink: s.VerificationLink(token),
	}
	if err := s.notifier.SendVerification(ctx, msg); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		logger := pkgzerolog.FromContext(ctx)
		logger.Warn().Err(err).Str("recipient", email).Msg("Verification email not delivered")
		middleware.RecordAuthEvent("verification_email", "error")
		return
	}
	middleware.RecordAuthEvent("verification_email", "sent")
}

// VerificationLink builds the single-use activation URL for token.
func (s *AuthService) VerificationLink(token string) string {
	return s.baseURL + "/verify-email?token=" + url.QueryEscape(token)
}

// VerifyEmail redeems a verification token. Missing, unknown and already
// redeemed tokens all fail with ErrInvalidVerificationLink.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.verify_email", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if token == "" {
		middleware.RecordAuthEvent("verify", "invalid")
		return fmt.Errorf("verify email: %w", ErrInvalidVerificationLink)
	}

	row, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: lookup token: %w", ErrStorageFailure, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("verify.success", false))
		middleware.RecordAuthEvent("verify", "invalid")
		return fmt.Errorf("verify email: %w", ErrInvalidVerificationLink)
	}

	ok, err := s.users.MarkVerified(ctx, row.ID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: mark verified: %w", ErrStorageFailure, err)
	}
	if !ok {
		// redeemed concurrently between lookup and update
		middleware.RecordAuthEvent("verify", "invalid")
		return fmt.Errorf("verify email for user %d: %w", row.ID, ErrInvalidVerificationLink)
	}

	span.SetAttributes(
		attribute.String("user.id", strconv.Itoa(row.ID)),
		attribute.Bool("verify.success", true),
	)
	span.AddEvent("user.verified")
	middleware.RecordAuthEvent("verify", "success")
	return nil
}

// SignIn checks credentials and opens a session. Failures are reported in
// order: unknown user, wrong password, unverified account. The session row
// is written before success is returned.
func (s *AuthService) SignIn(ctx context.Context, req domain.SigninRequest) (*SignInResult, error) {
	username := strings.TrimSpace(req.Username)
	ctx, span := middleware.StartSpan(ctx, "auth.signin", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	row, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: query user %q: %w", ErrStorageFailure, username, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		middleware.RecordAuthEvent("signin", "not_found")
		return nil, fmt.Errorf("sign in %q: %w", username, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		middleware.RecordAuthEvent("signin", "bad_credential")
		return nil, fmt.Errorf("sign in %q: %w", username, ErrBadCredential)
	}

	if !row.Verified {
		span.SetAttributes(attribute.Bool("auth.success", false))
		middleware.RecordAuthEvent("signin", "unverified")
		return nil, fmt.Errorf("sign in %q: %w", username, ErrUnverified)
	}

	sid, err := newToken()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	expiresAt := s.now().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, row.ID, sid, expiresAt); err != nil {
		span.RecordError(err)
		middleware.RecordAuthEvent("signin", "error")
		return nil, fmt.Errorf("%w: create session: %w", ErrStorageFailure, err)
	}

	// Update last_login timestamp (best-effort, don't fail sign-in)
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	result := &SignInResult{
		User: domain.User{
			ID:       strconv.Itoa(row.ID),
			Username: row.Username,
			Email:    row.Email,
		},
		SessionID: sid,
		ExpiresAt: expiresAt,
	}

	span.SetAttributes(
		attribute.String("user.id", result.User.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")
	middleware.RecordAuthEvent("signin", "success")

	return result, nil
}

// ValidateSession resolves a session id to its user. Missing, unknown and
// expired sessions all fail with ErrUnauthenticated; an expired row is
// removed on the way out.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domain.Identity, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.validate_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if sessionID == "" {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("validate session: %w", ErrUnauthenticated)
	}

	row, err := s.sessions.GetUserByToken(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: query session: %w", ErrStorageFailure, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("lookup session: %w", ErrUnauthenticated)
	}

	if !s.now().Before(row.ExpiresAt) {
		span.SetAttributes(attribute.Bool("session.valid", false))
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			span.RecordError(fmt.Errorf("delete expired session: %w", delErr))
		}
		return nil, fmt.Errorf("session expired at %v: %w", row.ExpiresAt, ErrUnauthenticated)
	}

	span.SetAttributes(
		attribute.String("user.id", strconv.Itoa(row.UserID)),
		attribute.Bool("session.valid", true),
	)

	return &domain.Identity{UserID: row.UserID, Username: row.Username}, nil
}

// Unauthenticated reports whether err from ValidateSession means there is
// no valid session, as opposed to a storage failure.
func (s *AuthService) Unauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// Logout destroys the session. Unknown ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		span.RecordError(err)
		middleware.RecordAuthEvent("logout", "error")
		return fmt.Errorf("%w: delete session: %w", ErrStorageFailure, err)
	}
	middleware.RecordAuthEvent("logout", "success")
	return nil
}

// AuthStatus reports whether sessionID is signed in. Storage errors are
// reported as signed out.
func (s *AuthService) AuthStatus(ctx context.Context, sessionID string) domain.AuthStatus {
	identity, err := s.ValidateSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			logger := pkgzerolog.FromContext(ctx)
			logger.Error().Err(err).Msg("Auth status lookup failed")
		}
		return domain.AuthStatus{Authenticated: false}
	}
	return domain.AuthStatus{Authenticated: true, Username: &identity.Username}
}
