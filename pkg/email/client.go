package email

import (
	"context"

	"gopkg.in/mail.v2"
)

type Client struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	subject  string
}

func NewClient(smtpHost string, smtpPort int, username, password, from, subject string) *Client {
	if subject == "" {
		subject = "Medication reminder alert"
	}

	return &Client{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		from:     from,
		subject:  subject,
	}
}

// Message builds the mail sent to a single recipient.
func (c *Client) Message(to string, msg string) *mail.Message {
	message := mail.NewMessage()

	message.SetHeader("From", c.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", c.subject)

	message.SetBody("text/plain", msg)

	return message
}

func (c *Client) Send(ctx context.Context, to string, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dialer := mail.NewDialer(c.smtpHost, c.smtpPort, c.username, c.password)

	return dialer.DialAndSend(c.Message(to, msg))
}
