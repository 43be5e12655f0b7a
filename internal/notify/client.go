package notify

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outbound email.
type Message struct {
	FromName string
	From     string
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
}

// EmailClient delivers a rendered message.
type EmailClient interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridClient delivers through the SendGrid v3 API.
type SendGridClient struct {
	client *sendgrid.Client
	logger *log.Logger
}

func NewSendGridClient(apiKey string, logger *log.Logger) *SendGridClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SendGridClient{client: sendgrid.NewSendClient(apiKey), logger: logger}
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		return fmt.Errorf("from address is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(msg.FromName, msg.From),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)
	resp, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.logger.Printf("sendgrid: error status=%d body=%s", resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", resp.StatusCode)
	}
	c.logger.Printf("sendgrid: mail sent status=%d to=%s subject=%q", resp.StatusCode, msg.To, msg.Subject)
	return nil
}

// LogClient writes messages to a logger instead of sending them. It is used
// when no SendGrid key is configured.
type LogClient struct {
	logger *log.Logger
}

func NewLogClient(logger *log.Logger) *LogClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogClient{logger: logger}
}

func (c *LogClient) Send(_ context.Context, msg Message) error {
	c.logger.Printf("mail: to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}
