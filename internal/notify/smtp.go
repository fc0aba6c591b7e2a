package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/duynhne/placement-service/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends the verification link as a plain-text email.
type SMTPNotifier struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTPNotifier builds a notifier from the mail settings.
func NewSMTPNotifier(cfg config.MailConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from:     cfg.From,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

// SendVerification blocks until the server accepts the message or ctx ends.
// smtp.SendMail has no context support, so an expired ctx abandons the
// send goroutine rather than stopping it.
func (n *SMTPNotifier) SendVerification(ctx context.Context, v Verification) error {
	msg := buildMessage(n.from, v)

	done := make(chan error, 1)
	go func() {
		done <- n.sendMail(n.addr, n.auth, n.from, []string{v.RecipientEmail}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send verification to %s: %w", v.RecipientEmail, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send verification to %s: %w", v.RecipientEmail, ctx.Err())
	}
}

func buildMessage(from string, v Verification) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + v.RecipientEmail + "\r\n")
	b.WriteString("Subject: Verify your placement portal account\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Welcome! Confirm your email address by opening the link below:\r\n\r\n")
	b.WriteString(v.VerificationLink + "\r\n")
	return []byte(b.String())
}
