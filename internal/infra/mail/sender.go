package mail

import (
	"errors"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

var ErrNoTransport = errors.New("no smtp transport configured")

// Dialer is the part of *gomail.Dialer the sender uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Transport struct {
	Name   string
	Dialer Dialer
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// NewSMTPTransport returns false when the config has no host.
func NewSMTPTransport(name string, cfg SMTPConfig) (Transport, bool) {
	if cfg.Host == "" {
		return Transport{}, false
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return Transport{Name: name, Dialer: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)}, true
}

// EmailSender tries each transport in order until one accepts the message.
type EmailSender struct {
	From       string
	Transports []Transport
}

func NewEmailSender(from string, transports ...Transport) *EmailSender {
	return &EmailSender{From: from, Transports: transports}
}

// Send returns the name of the transport that delivered the message.
func (s *EmailSender) Send(to, subject, htmlBody string) (string, error) {
	if len(s.Transports) == 0 {
		return "", ErrNoTransport
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var errs []error
	for _, t := range s.Transports {
		if err := t.Dialer.DialAndSend(m); err != nil {
			log.Printf("❌ SMTP transport %s failed: %v", t.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		return t.Name, nil
	}
	return "", fmt.Errorf("all smtp transports failed: %w", errors.Join(errs...))
}
