package utils

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Kariqs/camiu-api/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderConfirmationTmpl = template.Must(template.ParseFS(templateFS, "templates/order_confirmation.html"))

type MailConfig struct {
	From     string
	Password string
	SMTPHost string
	// SMTPAddress is host:port of the submission server.
	SMTPAddress string
}

type Mailer struct {
	cfg  MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

type OrderEmailData struct {
	Name  string
	Order *models.Order
}

func RenderOrderConfirmation(data OrderEmailData) (string, error) {
	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) SendOrderConfirmation(emailTo string, data OrderEmailData) error {
	body, err := RenderOrderConfirmation(data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your Camiu order %s", data.Order.Reference)
	return m.SendEmail(emailTo, subject, body)
}

func (m *Mailer) SendEmail(emailTo string, emailSubject string, htmlBody string) error {
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		emailTo,
		emailSubject,
		htmlBody,
	)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)

	if err := m.send(m.cfg.SMTPAddress, auth, m.cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
