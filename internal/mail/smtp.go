package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/donelist/apiserver/config"
)

// SMTPMailer delivers mail directly over SMTP with STARTTLS and plain
// authentication.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host),
		from: cfg.From,
	}
}

// Send delivers the message. The context is accepted for interface
// symmetry; net/smtp does not support cancellation mid-session.
func (m *SMTPMailer) Send(_ context.Context, email Email) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLBody)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{email.To}, []byte(msg.String()))
}

func (m *SMTPMailer) Close() error {
	return nil
}
