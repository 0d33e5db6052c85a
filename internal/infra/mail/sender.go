package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from, appURL string) *EmailSender {
	return NewEmailSenderWithDialer(gomail.NewDialer(host, port, user, password), from, appURL)
}

func NewEmailSenderWithDialer(d Dialer, from, appURL string) *EmailSender {
	return &EmailSender{From: from, AppURL: appURL, dialer: d}
}

// SendLeadWelcome manda o email de boas-vindas depois de um signup.
func (s *EmailSender) SendLeadWelcome(to, name string) error {
	subject := "Welcome to TaskFlow"
	if name != "" {
		subject = fmt.Sprintf("Welcome to TaskFlow, %s!", name)
	}
	return s.send(to, subject, "lead_welcome.html", LeadWelcomeData{Name: name, AppURL: s.AppURL})
}

func (s *EmailSender) SendLevelUp(to, name string, level int) error {
	subject := fmt.Sprintf("You reached level %d on TaskFlow", level)
	return s.send(to, subject, "level_up.html", LevelUpData{Name: name, Level: level, AppURL: s.AppURL})
}

func (s *EmailSender) send(to, subject, tmpl string, data interface{}) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("erro ao processar template %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
