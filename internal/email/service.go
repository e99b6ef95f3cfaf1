package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/caretrip/coordination-api/internal/config"
)

// Service sends operational mail. Failures are reported to the caller
// but never fail the operation that triggered them.
type Service interface {
	SendInvitation(ctx context.Context, to, name string) error
	SendStatusNotice(ctx context.Context, to, name, status string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.EmailConfig) Service {
	if !cfg.Enabled {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendInvitation(ctx context.Context, to, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to CareTrip")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you on the CareTrip coordination platform. "+
			"Use this email address to sign in and set your password.\n", name))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

func (s *smtpService) SendStatusNotice(ctx context.Context, to, name, status string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your CareTrip account status changed")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour account status is now: %s.\n", name, status))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send status notice: %w", err)
	}
	return nil
}

type noopService struct{}

func (n *noopService) SendInvitation(ctx context.Context, to, name string) error { return nil }

func (n *noopService) SendStatusNotice(ctx context.Context, to, name, s string) error { return nil }
