package mail

import "gopkg.in/gomail.v2"

type LeadWelcomeData struct {
	Name   string
	AppURL string
}

type LevelUpData struct {
	Name   string
	Level  int
	AppURL string
}

// Dialer é satisfeito por *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	AppURL string
	dialer Dialer
}
