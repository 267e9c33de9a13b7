package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// Email is an outgoing message handed to a Mailer.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New Contact Form Submission</h2>
<ul>
  <li><strong>Name:</strong> {{.Name}}</li>
  <li><strong>Email:</strong> {{.Email}}</li>
  <li><strong>Subject:</strong> {{.Subject}}</li>
</ul>
<h3>Message:</h3>
<p>{{.Message}}</p>
`))

// ContactService relays contact form submissions by email.
type ContactService struct {
	mailer Mailer
	from   string
	to     string
}

// NewContactService creates a new ContactService. mailer may be nil when no
// email provider is configured.
func NewContactService(mailer Mailer, from, to string) *ContactService {
	return &ContactService{mailer: mailer, from: from, to: to}
}

// Submit validates msg and forwards it to the configured recipient.
// Nothing is stored.
func (s *ContactService) Submit(ctx context.Context, msg domain.ContactMessage) error {
	msg = domain.ContactMessage{
		Name:    strings.TrimSpace(msg.Name),
		Email:   strings.TrimSpace(msg.Email),
		Subject: strings.TrimSpace(msg.Subject),
		Message: strings.TrimSpace(msg.Message),
	}

	err := validation.ValidateStruct(&msg,
		validation.Field(&msg.Name, validation.Required),
		validation.Field(&msg.Email, validation.Required, is.EmailFormat),
		validation.Field(&msg.Subject, validation.Required),
		validation.Field(&msg.Message, validation.Required),
	)
	if err := toValidationError(err); err != nil {
		return err
	}

	if s.mailer == nil {
		return domain.ErrServiceUnavailable
	}

	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("render contact email: %w", err)
	}

	err = s.mailer.Send(ctx, Email{
		From:    s.from,
		To:      []string{s.to},
		ReplyTo: msg.Email,
		Subject: "New Contact Form Submission: " + msg.Subject,
		HTML:    body.String(),
	})
	if err != nil {
		slog.Error("contact relay failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrRelay, err)
	}

	slog.Info("contact message relayed", "reply_to", msg.Email)
	return nil
}
