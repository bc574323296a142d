package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SMTPSender delivers plain text mail through a single SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host, port, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		host: host,
		port: port,
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	message := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, s.auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	log.Debugf("mail [%s] sent to %s", subject, to)
	return nil
}
