package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/aidanjnn/lost-found-app/pkg/config"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
)

// Message is a single outbound email with plain text and optional HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(m.To)); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject required")
	}
	if strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.HTML) == "" {
		return fmt.Errorf("body required")
	}
	return nil
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when credentials are configured and a logging
// mailer otherwise.
func New(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	if cfg.Configured() {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{logg: logg, from: cfg.FromEmail}
}

// SMTPMailer delivers through an authenticated STARTTLS relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := m.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	built := gomail.NewMsg()
	if err := built.FromFormat(m.cfg.FromName, m.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := built.To(strings.TrimSpace(msg.To)); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	built.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		built.SetBodyString(gomail.TypeTextPlain, msg.Text)
		built.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		built.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		built.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	return built, nil
}

// LogMailer writes a summary of each message to the structured log instead
// of delivering it. Used when SMTP is not configured.
type LogMailer struct {
	logg *logger.Logger
	from string
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if m.logg == nil {
		return nil
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"mail_from":    m.from,
		"mail_to":      msg.To,
		"mail_subject": msg.Subject,
		"mail_text":    msg.Text,
	})
	m.logg.Info(ctx, "mailer.mock_send")
	return nil
}
