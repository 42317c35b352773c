package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	mail "github.com/xhit/go-simple-mail/v2"
)

// smtpMailer sends email via SMTP with STARTTLS and bounded retry.
type smtpMailer struct {
	server *mail.SMTPServer
	from   string
	log    *slog.Logger
}

// NewSMTPMailer creates a Mailer that talks to an SMTP server. The from
// address may carry a display name ("Name <addr>").
func NewSMTPMailer(host string, port int, username, password, from string, log *slog.Logger) Mailer {
	server := mail.NewSMTPClient()
	server.Host = host
	server.Port = port
	server.Username = username
	server.Password = password
	server.Encryption = mail.EncryptionSTARTTLS
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 30 * time.Second

	return &smtpMailer{server: server, from: from, log: log}
}

func (s *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	// Transient SMTP failures get three attempts total with exponential backoff.
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.sendOnce(to, subject, htmlBody); err != nil {
			s.log.Warn("smtp send failed, may retry", "to", to, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *smtpMailer) sendOnce(to, subject, htmlBody string) error {
	client, err := s.server.Connect()
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}

	email := mail.NewMSG()
	email.SetFrom(s.from).AddTo(to).SetSubject(subject)
	email.SetBody(mail.TextHTML, htmlBody)
	if email.Error != nil {
		return email.Error
	}

	if err := email.Send(client); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
