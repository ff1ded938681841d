package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	mg "github.com/mailgun/mailgun-go/v4"

	"compassevent/internal/adapters/awsconfig"
	"compassevent/internal/domain"
)

// MailgunConfig holds configuration for Mailgun.
type MailgunConfig struct {
	Domain string
	APIKey string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         awsconfig.Options
	Mailgun     MailgunConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "mailgun" uses Mailgun;
// "noop", unknown providers, or a provider without credentials use a no-op mailer.
func NewMailer(ctx context.Context, config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		if !config.SES.HasStaticCredentials() || config.SES.Region == "" {
			logger.Warn("SES: missing credentials, emails will be skipped")
			return &noopMailer{logger: logger}, nil
		}
		if config.SES.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES. Use only in development.")
		}
		awsCfg, err := awsconfig.Load(ctx, config.SES)
		if err != nil {
			return nil, err
		}
		return NewSESMailer(ses.NewFromConfig(awsCfg), config.FromAddress, config.FromName, logger), nil
	case "mailgun":
		if config.Mailgun.Domain == "" || config.Mailgun.APIKey == "" {
			logger.Warn("Mailgun: missing domain or api key, emails will be skipped")
			return &noopMailer{logger: logger}, nil
		}
		client := &mailgunClient{impl: mg.NewMailgun(config.Mailgun.Domain, config.Mailgun.APIKey)}
		return NewMailgunMailer(client, config.FromAddress, config.FromName, logger), nil
	case "noop":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

func formatSender(address, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

// SESAPI is the subset of the SES client used by the mailer.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type sesMailer struct {
	client SESAPI
	source string
	logger *slog.Logger
}

// NewSESMailer returns a Mailer backed by client.
func NewSESMailer(client SESAPI, fromAddress, fromName string, logger *slog.Logger) domain.Mailer {
	return &sesMailer{client: client, source: formatSender(fromAddress, fromName), logger: logger}
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.Debug("email sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

func (s *sesMailer) SendWithAttachment(ctx context.Context, to, subject, html, text string, attachment domain.Attachment) error {
	raw, err := buildRawMessage(s.source, to, subject, html, text, attachment)
	if err != nil {
		return fmt.Errorf("build raw message: %w", err)
	}
	result, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("failed to send raw email via SES: %w", err)
	}
	s.logger.Debug("raw email sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

// MailgunMessage is an outgoing message in the shape the Mailgun API expects.
type MailgunMessage struct {
	From       string
	To         string
	Subject    string
	Text       string
	HTML       string
	Attachment *domain.Attachment
}

// MailgunAPI sends a prepared message and returns the provider message id.
type MailgunAPI interface {
	Send(ctx context.Context, msg MailgunMessage) (string, error)
}

// mailgunClient adapts *mg.MailgunImpl to MailgunAPI.
type mailgunClient struct {
	impl *mg.MailgunImpl
}

func (c *mailgunClient) Send(ctx context.Context, msg MailgunMessage) (string, error) {
	m := c.impl.NewMessage(msg.From, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	if msg.Attachment != nil {
		m.AddBufferAttachment(msg.Attachment.Filename, msg.Attachment.Content)
	}
	_, id, err := c.impl.Send(ctx, m)
	return id, err
}

type mailgunMailer struct {
	client MailgunAPI
	sender string
	logger *slog.Logger
}

// NewMailgunMailer returns a Mailer backed by client.
func NewMailgunMailer(client MailgunAPI, fromAddress, fromName string, logger *slog.Logger) domain.Mailer {
	return &mailgunMailer{client: client, sender: formatSender(fromAddress, fromName), logger: logger}
}

func (m *mailgunMailer) Send(ctx context.Context, to, subject, html, text string) error {
	return m.send(ctx, MailgunMessage{From: m.sender, To: to, Subject: subject, Text: text, HTML: html})
}

func (m *mailgunMailer) SendWithAttachment(ctx context.Context, to, subject, html, text string, attachment domain.Attachment) error {
	return m.send(ctx, MailgunMessage{From: m.sender, To: to, Subject: subject, Text: text, HTML: html, Attachment: &attachment})
}

func (m *mailgunMailer) send(ctx context.Context, msg MailgunMessage) error {
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	id, err := m.client.Send(c, msg)
	if err != nil {
		return fmt.Errorf("failed to send email via mailgun: %w", err)
	}
	m.logger.Debug("email sent via mailgun", "message_id", id)
	return nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(_ context.Context, to, subject, _, _ string) error {
	n.logger.Debug("email would be sent (noop)", "to", to, "subject", subject)
	return nil
}

func (n *noopMailer) SendWithAttachment(_ context.Context, to, subject, _, _ string, attachment domain.Attachment) error {
	n.logger.Debug("email would be sent (noop)", "to", to, "subject", subject, "attachment", attachment.Filename)
	return nil
}
