package mailservice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
)

var ErrNoRecipient = errors.New("email has no recipient")

// NewMailer returns a mailer for the SMTP settings in cfg. Dials give up after 5 seconds.
func NewMailer(cfg Config, parser TemplateParser) *Mail {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 5 * time.Second

	return &Mail{
		dialer: dialer,
		sender: cfg.Sender,
		parser: parser,
	}
}

// send renders templateFile with data and delivers it to recipient as a plain text message
// with an html alternative.
func (m *Mail) send(recipient string, data any, templateFile string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ErrNoRecipient
	}

	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", strings.TrimSpace(subject.String()))
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	// one SMTP session at a time
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("deliver email to %s: %w", recipient, err)
	}

	return nil
}
