package v1

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/placement-service/internal/core/domain"
	"github.com/duynhne/placement-service/internal/core/repository"
	"github.com/duynhne/placement-service/internal/notify"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Verification
	err  error
}

func (n *recordingNotifier) SendVerification(_ context.Context, v notify.Verification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, v)
	return n.err
}

func (n *recordingNotifier) lastToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no verification sent")
	u, err := url.Parse(n.sent[len(n.sent)-1].VerificationLink)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type fixture struct {
	store    *repository.MemoryStore
	auth     *AuthService
	notifier *recordingNotifier
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &now
	store := repository.NewMemoryStoreWithClock(func() time.Time { return *clock })
	notifier := &recordingNotifier{}

	auth := NewAuthService(store.Users(), store.Sessions(), notifier, AuthOptions{
		PublicBaseURL: "https://portal.test/",
		SessionTTL:    24 * time.Hour,
	})
	auth.hashCost = bcrypt.MinCost
	auth.now = func() time.Time { return *clock }

	return &fixture{store: store, auth: auth, notifier: notifier, clock: clock}
}

func (f *fixture) signUpVerified(t *testing.T, username, email, password string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, domain.SignupRequest{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	require.NoError(t, f.auth.VerifyEmail(ctx, f.notifier.lastToken(t)))
}

func TestSignUp_StoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.SignUp(ctx, domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	row, err := f.store.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotEqual(t, "secret1", row.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte("secret1")))
	assert.False(t, row.Verified)
	assert.Len(t, row.VerificationToken, 64)
}

func TestSignUp_SendsVerificationLink(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.SignUp(context.Background(), domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "alice@x.com", sent.RecipientEmail)
	assert.True(t, strings.HasPrefix(sent.VerificationLink, "https://portal.test/verify-email?token="))
}

func TestSignUp_NotifierFailureStillCreatesUser(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	_, err := f.auth.SignUp(context.Background(), domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	row, err := f.store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, row)
}

func TestSignUp_ValidationCreatesNoUser(t *testing.T) {
	tests := []struct {
		name string
		req  domain.SignupRequest
	}{
		{"short username", domain.SignupRequest{Username: "al", Email: "al@x.com", Password: "secret1"}},
		{"short password", domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "12345"}},
		{"empty email", domain.SignupRequest{Username: "alice", Email: "", Password: "secret1"}},
		{"malformed email", domain.SignupRequest{Username: "alice", Email: "not-an-email", Password: "secret1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.auth.SignUp(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrValidationFailed)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Problems)

			row, err := f.store.Users().GetByUsername(context.Background(), tt.req.Username)
			require.NoError(t, err)
			assert.Nil(t, row)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestSignUp_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.SignUp(ctx, domain.SignupRequest{Username: "alice", Email: "other@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateCredential)

	_, err = f.auth.SignUp(ctx, domain.SignupRequest{Username: "alice2", Email: "alice@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateCredential)
}

func TestSignUp_ConcurrentSameUsernameOneWins(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.auth.SignUp(context.Background(), domain.SignupRequest{
				Username: "alice", Email: "alice" + strings.Repeat("x", i) + "@x.com", Password: "secret1",
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateCredential)
	}
	assert.Equal(t, 1, succeeded)
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, domain.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)
	token := f.notifier.lastToken(t)

	require.NoError(t, f.auth.VerifyEmail(ctx, token))

	row, err := f.store.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, row.Verified)
	assert.Empty(t, row.VerificationToken)

	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, token), ErrInvalidVerificationLink)
}

func TestVerifyEmail_MissingAndUnknownLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := f.auth.VerifyEmail(ctx, "")
	unknown := f.auth.VerifyEmail(ctx, strings.Repeat("ab", 32))

	assert.ErrorIs(t, missing, ErrInvalidVerificationLink)
	assert.ErrorIs(t, unknown, ErrInvalidVerificationLink)
}

func TestSignIn_Outcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, domain.SignupRequest{Username: "pending", Email: "p@x.com", Password: "secret1"})
	require.NoError(t, err)
	f.signUpVerified(t, "bob", "bob@x.com", "hunter22")

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"unknown user", "ghost", "whatever", ErrUserNotFound},
		{"unverified with correct password", "pending", "secret1", ErrUnverified},
		{"unverified with wrong password", "pending", "wrong!!", ErrBadCredential},
		{"verified with wrong password", "bob", "wrong!!", ErrBadCredential},
		{"verified with correct password", "bob", "hunter22", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.auth.SignIn(ctx, domain.SigninRequest{Username: tt.username, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.SessionID, 64)
			assert.Equal(t, f.clock.Add(24*time.Hour), res.ExpiresAt)

			identity, err := f.auth.ValidateSession(ctx, res.SessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.username, identity.Username)
		})
	}
}

func TestSignIn_DistinctSessionIDs(t *testing.T) {
	f := newFixture(t)
	f.signUpVerified(t, "bob", "bob@x.com", "hunter22")

	seen := map[string]bool{}
	for range 5 {
		res, err := f.auth.SignIn(context.Background(), domain.SigninRequest{Username: "bob", Password: "hunter22"})
		require.NoError(t, err)
		assert.False(t, seen[res.SessionID])
		seen[res.SessionID] = true
	}
}

type failingSessions struct {
	domain.SessionRepository
}

func (failingSessions) Create(context.Context, int, string, time.Time) error {
	return errors.New("connection refused")
}

func TestSignIn_SessionWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.signUpVerified(t, "bob", "bob@x.com", "hunter22")
	f.auth.sessions = failingSessions{f.store.Sessions()}

	res, err := f.auth.SignIn(context.Background(), domain.SigninRequest{Username: "bob", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Nil(t, res)
}

func TestValidateSession_ExpiryAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUpVerified(t, "bob", "bob@x.com", "hunter22")

	res, err := f.auth.SignIn(ctx, domain.SigninRequest{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)

	_, err = f.auth.ValidateSession(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.auth.ValidateSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, f.auth.Unauthenticated(err))
	assert.False(t, f.auth.Unauthenticated(fmt.Errorf("%w: query session: %w", ErrStorageFailure, errors.New("connection refused"))))

	*f.clock = f.clock.Add(23 * time.Hour)
	_, err = f.auth.ValidateSession(ctx, res.SessionID)
	require.NoError(t, err)

	*f.clock = f.clock.Add(time.Hour)
	_, err = f.auth.ValidateSession(ctx, res.SessionID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	res, err = f.auth.SignIn(ctx, domain.SigninRequest{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, res.SessionID))
	_, err = f.auth.ValidateSession(ctx, res.SessionID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignIn_TrimsUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUpVerified(t, " carol ", "carol@x.com", "hunter22")

	res, err := f.auth.SignIn(ctx, domain.SigninRequest{Username: " carol ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "carol", res.User.Username)
}

func TestAuthStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUpVerified(t, "bob", "bob@x.com", "hunter22")

	assert.Equal(t, domain.AuthStatus{Authenticated: false}, f.auth.AuthStatus(ctx, ""))

	res, err := f.auth.SignIn(ctx, domain.SigninRequest{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)

	status := f.auth.AuthStatus(ctx, res.SessionID)
	assert.True(t, status.Authenticated)
	require.NotNil(t, status.Username)
	assert.Equal(t, "bob", *status.Username)
}
