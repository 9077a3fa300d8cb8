package services

import (
	"context"
	"fmt"
	"html"

	"cleanhub/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       logger.Logger
}

// NewSendGridMailer returns nil when no API key is configured.
func NewSendGridMailer(cfg config.Config) *SendGridMailer {
	if cfg.SendGridAPIKey == "" {
		return nil
	}

	return &SendGridMailer{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.EmailFromAddress,
		fromName:  cfg.EmailFromName,
		log:       logger.New("SendGridMailer"),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	log := m.log.Function("Send")

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.fromEmail),
		subject,
		mail.NewEmail(toName, toEmail),
		body,
		"<p>"+html.EscapeString(body)+"</p>",
	)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return log.Err("failed to send email", err, "subject", subject)
	}

	if response.StatusCode >= 400 {
		return log.Err(
			"sendgrid rejected email",
			fmt.Errorf("sendgrid error: status %d", response.StatusCode),
			"body", response.Body,
		)
	}

	return nil
}
