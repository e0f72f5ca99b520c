package mailer

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/duvallb/records-request-api/pkg/config"
)

// Mail is a rendered outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers rendered emails over SMTP. When no SMTP host is configured
// it logs the message instead of sending, so notification flows keep working
// in development.
type Mailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// New constructs a Mailer from SMTP configuration.
func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, logger: logger}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Enabled reports whether real SMTP delivery is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

// Send delivers the mail, or logs it when SMTP is not configured.
func (m *Mailer) Send(mail Mail) error {
	if !m.Enabled() {
		m.logger.Info("email dispatch (smtp disabled)",
			zap.String("to", mail.To),
			zap.String("subject", mail.Subject),
		)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	return m.dialer.DialAndSend(msg)
}
