// Package email sends CRM messages through SendGrid. Without an API key
// it logs the message instead, which is what development wants anyway.
package email

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service handles email sending
type Service struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewService creates the service. An empty apiKey enables log-only mode.
func NewService(apiKey, fromEmail, fromName string) *Service {
	s := &Service{
		fromEmail: fromEmail,
		fromName:  fromName,
	}
	if apiKey != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}
	return s
}

// Send delivers one plain-text message.
func (s *Service) Send(toEmail, toName, subject, body string) error {
	if s.client == nil {
		log.Printf("📧 [EMAIL] To: %s <%s>", toName, toEmail)
		log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
		log.Printf("   Subject: %s", subject)
		log.Printf("   Body:")
		log.Printf("   ---")
		log.Printf("   %s", body)
		log.Printf("   ---")
		return nil
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		subject,
		mail.NewEmail(toName, toEmail),
		body,
		"",
	)
	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendDigest delivers the morning reminder digest.
func (s *Service) SendDigest(toEmail, toName string, lines []string) error {
	body := fmt.Sprintf("Good morning %s,\n\nHere is what's on your plate today:\n\n", toName)
	for _, line := range lines {
		body += "  - " + line + "\n"
	}
	body += "\nHave a great day,\nNestDesk"
	return s.Send(toEmail, toName, "Your reminders for today", body)
}
