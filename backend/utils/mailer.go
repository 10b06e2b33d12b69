package utils

import (
	"context"
	"errors"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"project/backend/config"
)

// ErrEmailRateLimited is returned when the per-recipient email bucket is
// exhausted.
var ErrEmailRateLimited = errors.New("email rate limit exceeded, try again later")

// Mailer sends a single HTML email and returns a provider message id.
// Callers treat sends as fire-and-forget; a failed notification never fails
// the operation that triggered it.
type Mailer interface {
	Send(to, subject, html string) (string, error)
}

// NewMailer returns a SendGrid mailer when an API key is configured,
// otherwise a console mailer that only logs.
func NewMailer(cfg *config.Config, limiter RateLimiter, logger *log.Logger) Mailer {
	if cfg.SendgridKey == "" {
		logger.Println("SENDGRID_API_KEY not set, emails will be logged to console")
		return &consoleMailer{limiter: limiter, log: logger}
	}
	return &sendgridMailer{
		client:  sendgrid.NewSendClient(cfg.SendgridKey),
		from:    mail.NewEmail(cfg.AppName, cfg.EmailFrom),
		limiter: limiter,
		log:     logger,
	}
}

type sendgridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	limiter RateLimiter
	log     *log.Logger
}

func (m *sendgridMailer) Send(to, subject, html string) (string, error) {
	// Limit by recipient to protect against notification loops.
	if !m.limiter.Allow(context.Background(), "email:"+to, BucketEmail) {
		m.log.Printf("email to %s dropped: rate limit exceeded", to)
		return "", ErrEmailRateLimited
	}

	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), "", html)
	resp, err := m.client.Send(msg)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", errors.New("sendgrid: " + resp.Body)
	}

	msgID := resp.Headers["X-Message-Id"]
	if len(msgID) > 0 {
		return msgID[0], nil
	}
	return "", nil
}

type consoleMailer struct {
	limiter RateLimiter
	log     *log.Logger
}

func (m *consoleMailer) Send(to, subject, html string) (string, error) {
	if !m.limiter.Allow(context.Background(), "email:"+to, BucketEmail) {
		return "", ErrEmailRateLimited
	}
	m.log.Printf("mail to=%s subject=%q\n%s", to, subject, html)
	return "console", nil
}
