// internal/services/mailer.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
)

// Mailer mirrors in-app notifications to e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	cfg config.EmailConfig
	log logrus.FieldLogger
}

func NewSMTPMailer(cfg config.EmailConfig, log logrus.FieldLogger) *SMTPMailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SMTPMailer{cfg: cfg, log: log.WithField("component", "mailer")}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.cfg.SMTPHost == "" {
		// Email not configured, just log
		m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("email not sent: smtp not configured")
		return nil
	}

	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	from := m.cfg.FromEmail
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", from, to, subject, htmlBody))

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	return smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, msg)
}

var notificationEmail = template.Must(template.New("notification").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>{{.Title}}</h2>
	<p>Hello {{.Name}},</p>
	<p>{{.Message}}</p>
	{{if .Link}}<a href="{{.Link}}">Open IPR Cell</a>{{end}}
	<p>Best regards,<br>IPR Cell</p>
</body>
</html>`))

func renderNotificationEmail(name string, tpl Template, link string) (string, error) {
	var buf bytes.Buffer
	err := notificationEmail.Execute(&buf, map[string]interface{}{
		"Name":    name,
		"Title":   tpl.Title,
		"Message": tpl.Message,
		"Link":    link,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
