package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"compassevent/internal/domain"
)

// Attachment metadata for subscription invites.
const (
	calendarFilename    = "evento.ics"
	calendarContentType = "text/calendar"
)

type emailService struct {
	mailer      domain.Mailer
	renderer    domain.EmailTemplateRenderer
	calendar    domain.CalendarBuilder
	frontendURL string
	logger      *slog.Logger
}

// NewEmailService returns an EmailService that renders templates and sends them through mailer.
// Confirmation links point to frontendURL; when it is empty confirmation emails are skipped.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, calendar domain.CalendarBuilder, frontendURL string, logger *slog.Logger) domain.EmailService {
	return &emailService{
		mailer:      mailer,
		renderer:    renderer,
		calendar:    calendar,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// SendConfirmation sends the email-confirmation link using the "confirmation" template.
func (s *emailService) SendConfirmation(ctx context.Context, email, token string) error {
	if s.frontendURL == "" {
		s.logger.WarnContext(ctx, "FRONTEND_URL is not configured, confirmation link will not be generated")
		return nil
	}
	data := &domain.ConfirmationEmailData{
		Email: email,
		Link:  s.frontendURL + "/auth/confirm-email?token=" + url.QueryEscape(token),
	}
	return s.send(ctx, "confirmation", email, data)
}

func (s *emailService) SendAccountDeactivated(ctx context.Context, data *domain.AccountEmailData) error {
	if data == nil {
		return fmt.Errorf("account email data is nil")
	}
	return s.send(ctx, "account_deactivated", data.Email, data)
}

func (s *emailService) SendEventCreated(ctx context.Context, data *domain.EventEmailData) error {
	if err := checkEventData(data); err != nil {
		return err
	}
	return s.send(ctx, "event_created", data.Email, data)
}

func (s *emailService) SendEventCanceled(ctx context.Context, data *domain.EventEmailData) error {
	if err := checkEventData(data); err != nil {
		return err
	}
	return s.send(ctx, "event_canceled", data.Email, data)
}

// SendEventSubscription sends the subscription confirmation with the event attached as an iCalendar file.
func (s *emailService) SendEventSubscription(ctx context.Context, data *domain.EventEmailData) error {
	if err := checkEventData(data); err != nil {
		return err
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_subscription", data)
	if err != nil {
		return fmt.Errorf("failed to render event_subscription template: %w", err)
	}
	ics, err := s.calendar.Build(data.Event)
	if err != nil {
		return fmt.Errorf("failed to build calendar invite: %w", err)
	}
	attachment := domain.Attachment{Filename: calendarFilename, Content: ics, ContentType: calendarContentType}
	if err := s.mailer.SendWithAttachment(ctx, data.Email, subject, htmlBody, textBody, attachment); err != nil {
		return fmt.Errorf("failed to send event_subscription email: %w", err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", "event_subscription", "to", data.Email)
	return nil
}

func (s *emailService) SendSubscriptionCanceled(ctx context.Context, data *domain.EventEmailData) error {
	if err := checkEventData(data); err != nil {
		return err
	}
	return s.send(ctx, "subscription_canceled", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}

func checkEventData(data *domain.EventEmailData) error {
	if data == nil || data.Event == nil {
		return fmt.Errorf("event email data is nil")
	}
	return nil
}
