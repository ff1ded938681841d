package domain

import "context"

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations without credentials return nil without sending.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
	SendWithAttachment(ctx context.Context, to, subject, html, text string, attachment Attachment) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CalendarBuilder renders an event as an iCalendar document.
type CalendarBuilder interface {
	Build(event *Event) ([]byte, error)
}

// ConfirmationEmailData holds data for the email-confirmation message.
type ConfirmationEmailData struct {
	Email string
	Link  string
}

// AccountEmailData holds data for account lifecycle messages.
type AccountEmailData struct {
	Email string
	Name  string
}

// EventEmailData holds data for every event-related message.
type EventEmailData struct {
	Email string
	Event *Event
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendConfirmation(ctx context.Context, email, token string) error
	SendAccountDeactivated(ctx context.Context, data *AccountEmailData) error
	SendEventCreated(ctx context.Context, data *EventEmailData) error
	SendEventCanceled(ctx context.Context, data *EventEmailData) error
	SendEventSubscription(ctx context.Context, data *EventEmailData) error
	SendSubscriptionCanceled(ctx context.Context, data *EventEmailData) error
}
