package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plant-care-service/internal/ports/channels"

	gomail "gopkg.in/gomail.v2"
)

var (
	ErrNotConfigured = errors.New("smtp sender not configured")
	ErrNoAddress     = errors.New("no email address for user")
)

// AddressBook resuelve el email de un usuario. En producción lo
// implementa el cliente del servicio de usuarios.
type AddressBook interface {
	EmailAddress(ctx context.Context, userID string) (string, error)
}

// Config SMTP. Todo viene de env vars en quien instancia.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender entrega notificaciones por correo vía SMTP.
type Sender struct {
	dialer    *gomail.Dialer
	from      string
	addresses AddressBook
}

func NewSender(cfg Config, addresses AddressBook) *Sender {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port == 0 {
		return &Sender{addresses: addresses}
	}
	return &Sender{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      strings.TrimSpace(cfg.From),
		addresses: addresses,
	}
}

func (s *Sender) Send(ctx context.Context, msg channels.Message) (channels.Receipt, error) {
	if s == nil || s.dialer == nil {
		return channels.Receipt{}, ErrNotConfigured
	}
	if s.addresses == nil {
		return channels.Receipt{}, ErrNoAddress
	}

	to, err := s.addresses.EmailAddress(ctx, msg.UserID)
	if err != nil {
		return channels.Receipt{}, fmt.Errorf("%w: %v", ErrNoAddress, err)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return channels.Receipt{}, ErrNoAddress
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return channels.Receipt{}, fmt.Errorf("smtp send: %w", err)
	}

	return channels.Receipt{Provider: "smtp"}, nil
}
