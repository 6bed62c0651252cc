package service

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/models"
)

// EmailService sends transactional mail. Without SMTP configuration it is a
// no-op so local and test environments need no mail server.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendWelcome greets a newly registered user. Best effort.
func (s *EmailService) SendWelcome(user *models.User) error {
	if s.cfg.SMTPHost == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.EmailFrom)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "Welcome to Platefeed")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour account @%s is ready. Share your first recipe!\n", user.FirstName, user.Username))

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	return d.DialAndSend(m)
}
