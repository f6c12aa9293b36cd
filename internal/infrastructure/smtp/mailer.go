package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-movie-api/internal/config"
)

// Mailer delivers plain-text transactional mail, primarily password reset
// codes. Implementations must be safe for concurrent use.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	addr     string
	host     string
	from     string
	username string
	password string
}

// NewMailer builds a Mailer from the SMTP settings in cfg. When no username
// is configured the mailer connects unauthenticated, which is what local
// relays like MailHog expect in development.
func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		addr:     fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
