// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLetter(toEmail, subject, letterText string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendLetter mails a generated letter to the recipient. The letter body is
// plain text produced by the letter mode; paragraphs are preserved.
func (s *emailService) SendLetter(toEmail, subject, letterText string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	if subject == "" {
		subject = "Surat dari OXEN AI"
	}
	m.SetHeader("Subject", subject)

	body := fmt.Sprintf(`
		<div style="font-family: Georgia, serif; padding: 20px; color: #333; white-space: pre-line;">
%s
		</div>
	`, strings.TrimSpace(letterText))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send letter to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Letter sent to %s\n", toEmail)
	return nil
}
