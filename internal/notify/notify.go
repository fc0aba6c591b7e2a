// Package notify delivers verification links to newly registered users.
package notify

import (
	"context"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
)

// Verification is what a user needs to activate the account.
type Verification struct {
	RecipientEmail   string
	VerificationLink string
}

// Notifier delivers a verification message.
type Notifier interface {
	SendVerification(ctx context.Context, v Verification) error
}

// LogNotifier writes the link to the request logger instead of sending mail.
// It is the development default.
type LogNotifier struct{}

// NewLogNotifier returns a Notifier that only logs.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

// SendVerification logs the recipient and link at info level.
func (LogNotifier) SendVerification(ctx context.Context, v Verification) error {
	pkgzerolog.FromContext(ctx).Info().
		Str("recipient", v.RecipientEmail).
		Str("verification_link", v.VerificationLink).
		Msg("Verification email")
	return nil
}
