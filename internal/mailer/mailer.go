package mailer

import (
	"fmt"
	"html/template"

	"auth_service/internal/config"
	"auth_service/internal/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
}

func New(cfg config.SMTP) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	return dialer.DialAndSend(msg)
}

// BuildMail renders subject and body for a queued message.
func BuildMail(msg models.MailMessage) (subject, body string, err error) {
	name := template.HTMLEscapeString(msg.Name)
	if name == "" {
		name = "there"
	}

	switch msg.Purpose {
	case models.MailPurposeVerifyEmail:
		subject = "Verify your email"
		body = fmt.Sprintf(verifyEmailBody, name, msg.Link, msg.Link)
	case models.MailPurposePasswordReset:
		subject = "Password reset"
		body = fmt.Sprintf(resetPasswordBody, name, msg.Link, msg.Link)
	default:
		return "", "", fmt.Errorf("mailer: unknown mail purpose %q", msg.Purpose)
	}

	return subject, body, nil
}

const verifyEmailBody = `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Welcome, %s!</h2>
  <p>Please confirm your email address by clicking the link below:</p>
  <p><a href="%s">Verify email</a></p>
  <p>If the button does not work, copy this address into your browser:<br>%s</p>
  <p>If you did not create an account, you can ignore this message.</p>
</div>`

const resetPasswordBody = `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Hello, %s</h2>
  <p>We received a request to reset your password. Click the link below to choose a new one:</p>
  <p><a href="%s">Reset password</a></p>
  <p>If the button does not work, copy this address into your browser:<br>%s</p>
  <p><strong>The link expires in 10 minutes.</strong></p>
  <p>If you did not request a reset, you can ignore this message.</p>
</div>`
