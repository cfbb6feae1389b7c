// Package smtp delivers outbound email through an SMTP relay.
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Message is a plain-text email with an optional binary attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Sender delivers email messages.
type Sender interface {
	// Send delivers the message, blocking until the relay accepts or
	// rejects it.
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MailSender implements Sender against an SMTP relay using go-mail.
type MailSender struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

// NewMailSender creates an SMTP-backed sender.
// If log is nil, a default logger is used.
func NewMailSender(cfg Config, log *slog.Logger) (*MailSender, error) {
	if log == nil {
		log = slog.Default()
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &MailSender{
		client: client,
		from:   cfg.From,
		logger: log.With(slog.String("component", "mail_sender")),
	}, nil
}

// Ensure MailSender implements Sender
var _ Sender = (*MailSender)(nil)

// Send implements Sender.Send
func (s *MailSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if len(msg.Attachment) > 0 {
		if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", msg.AttachmentName, err)
		}
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	s.logger.Debug("mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}
