package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

// Sender delivers one email per call and returns the transport's delivery ID.
// The scheduler never retries inside a single call; failure handling is the
// caller's problem.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) (string, error)
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to []string, subject, htmlBody string) (string, error) {
	id := "local-" + uuid.NewString()
	s.logger.Info("email (local dev)", "to", to, "subject", subject, "delivery_id", id, "bytes", len(htmlBody))
	return id, nil
}

// ResendSender sends emails via the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to []string, subject, htmlBody string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    htmlBody,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return sent.Id, nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
