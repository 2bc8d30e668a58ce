package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReminder(toEmail string, reminder ReminderMail) error
}

// ReminderMail is the already localized content of a reminder e-mail.
type ReminderMail struct {
	EventTitle string
	When       string // e.g. "01/06/2024 às 10:00"
	LeadTime   string // e.g. "1h"
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// Message builds the reminder e-mail without sending it.
func (s *emailService) Message(toEmail string, reminder ReminderMail) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Reminder: %s (%s)", reminder.EventTitle, reminder.When))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>Starts %s (in about %s).</p>
			<p>You are receiving this because e-mail reminders are enabled in your assistant settings.</p>
		</div>
	`, html.EscapeString(reminder.EventTitle), html.EscapeString(reminder.When), html.EscapeString(reminder.LeadTime))

	m.SetBody("text/html", body)
	m.AddAlternative("text/plain", fmt.Sprintf("%s starts %s (in about %s).", reminder.EventTitle, reminder.When, reminder.LeadTime))
	return m
}

func (s *emailService) SendReminder(toEmail string, reminder ReminderMail) error {
	if err := s.dialer.DialAndSend(s.Message(toEmail, reminder)); err != nil {
		return fmt.Errorf("send reminder to %s: %w", toEmail, err)
	}
	return nil
}
