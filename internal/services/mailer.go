package services

import (
	"fmt"
	"log"
	"net/smtp"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.Username, to, subject, body,
	)
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, m.Username, []string{to}, []byte(message)); err != nil {
		log.Println("Failed to send email:", err)
		return err
	}
	return nil
}
