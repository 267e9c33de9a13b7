// Package mailer delivers transactional email through Resend.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/irkinnovations/portfolio/internal/domain"
	"github.com/irkinnovations/portfolio/internal/service"
)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Resend sends email with the Resend API.
type Resend struct {
	emails emailSender
}

// NewResend creates a Resend mailer for apiKey.
func NewResend(apiKey string) *Resend {
	return &Resend{emails: resend.NewClient(apiKey).Emails}
}

// Send implements service.Mailer.
func (r *Resend) Send(ctx context.Context, email service.Email) error {
	resp, err := r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("%w: resend: %v", domain.ErrRelay, err)
	}

	slog.Debug("email sent", "provider", "resend", "id", resp.Id)
	return nil
}
