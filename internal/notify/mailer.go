package notify

import (
	"github.com/lowkeylabs/lowkey/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends operator copies of protocol signups over SMTP. Like the
// Telegram notifier it no-ops when unconfigured.
type Mailer struct {
	cfg config.SmtpConfig
}

func NewMailer(cfg config.SmtpConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.From != "" && m.cfg.To != ""
}

func (m *Mailer) Send(subject, body string) error {
	if !m.Configured() {
		zap.L().Debug("smtp mailer not configured, dropping message")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Passwd)
	return d.DialAndSend(msg)
}
