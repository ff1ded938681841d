package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compassevent/internal/adapters/awsconfig"
	"compassevent/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSES struct {
	sent    *ses.SendEmailInput
	raw     *ses.SendRawEmailInput
	sendErr error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.sent = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSES) SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.raw = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &ses.SendRawEmailOutput{MessageId: aws.String("msg-2")}, nil
}

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer()
	event := &domain.Event{ID: "ev-1", Name: "Go Conf", Description: "Talks", Date: time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)}

	tests := []struct {
		name        string
		template    string
		data        any
		wantSubject string
		wantInBody  string
	}{
		{"confirmation", "confirmation", domain.ConfirmationEmailData{Email: "a@x.com", Link: "https://app/auth/confirm-email?token=abc"}, "Email Confirmation", "token=abc"},
		{"account deactivated", "account_deactivated", domain.AccountEmailData{Email: "a@x.com", Name: "Ana"}, "Account Deactivated", "Ana"},
		{"event created", "event_created", domain.EventEmailData{Email: "a@x.com", Event: event}, "New Event Created", "01/05/2030 14:00"},
		{"event canceled", "event_canceled", domain.EventEmailData{Email: "a@x.com", Event: event}, "Event Canceled", "Go Conf"},
		{"event subscription", "event_subscription", domain.EventEmailData{Email: "a@x.com", Event: event}, "Event Subscription Confirmed", "Go Conf"},
		{"subscription canceled", "subscription_canceled", domain.EventEmailData{Email: "a@x.com", Event: event}, "Subscription canceled for the event: Go Conf", "Go Conf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html, text, err := r.Render(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, html, tt.wantInBody)
			assert.Contains(t, text, tt.wantInBody)
		})
	}

	t.Run("unknown template", func(t *testing.T) {
		_, _, _, err := r.Render("missing", nil)
		assert.Error(t, err)
	})
}

func TestCalendarBuilder_Build(t *testing.T) {
	b := &calendarBuilder{frontendURL: "https://app.example.com", now: func() time.Time {
		return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	}}
	event := &domain.Event{ID: "ev-1", Name: "Go Conf", Description: "Talks", Date: time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)}

	out, err := b.Build(event)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "BEGIN:VCALENDAR")
	assert.Contains(t, s, "METHOD:REQUEST")
	assert.Contains(t, s, "UID:ev-1")
	assert.Contains(t, s, "SUMMARY:Go Conf")
	assert.Contains(t, s, "DTSTART:20300501T140000Z")
	assert.Contains(t, s, "DTEND:20300501T160000Z")
	assert.Contains(t, s, "URL:https://app.example.com/events/ev-1")

	_, err = b.Build(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildRawMessage(t *testing.T) {
	raw, err := buildRawMessage("Events <no-reply@x.com>", "p@x.com", "New Event Created", "<p>hi</p>", "hi",
		domain.Attachment{Filename: CalendarFilename, Content: []byte("BEGIN:VCALENDAR"), ContentType: CalendarContentType})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "p@x.com", msg.Header.Get("To"))
	assert.Equal(t, "New Event Created", decodeHeader(t, msg.Header.Get("Subject")))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])
	first, err := reader.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Header.Get("Content-Type"), "multipart/alternative"))

	second, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, CalendarFilename, second.FileName())
	assert.Equal(t, "base64", second.Header.Get("Content-Transfer-Encoding"))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func decodeHeader(t *testing.T, v string) string {
	t.Helper()
	out, err := new(mime.WordDecoder).DecodeHeader(v)
	require.NoError(t, err)
	return out
}

func TestWrapBase64(t *testing.T) {
	out := string(wrapBase64([]byte(strings.Repeat("a", 200))))
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestSESMailer(t *testing.T) {
	ctx := context.Background()

	t.Run("send", func(t *testing.T) {
		fake := &fakeSES{}
		m := NewSESMailer(fake, "no-reply@x.com", "Events", discardLogger())
		require.NoError(t, m.Send(ctx, "p@x.com", "Subject", "<p>h</p>", "t"))
		require.NotNil(t, fake.sent)
		assert.Equal(t, "Events <no-reply@x.com>", aws.ToString(fake.sent.Source))
		assert.Equal(t, []string{"p@x.com"}, fake.sent.Destination.ToAddresses)
		assert.Equal(t, "Subject", aws.ToString(fake.sent.Message.Subject.Data))
		assert.Equal(t, "<p>h</p>", aws.ToString(fake.sent.Message.Body.Html.Data))
		assert.Equal(t, "t", aws.ToString(fake.sent.Message.Body.Text.Data))
	})

	t.Run("send with attachment", func(t *testing.T) {
		fake := &fakeSES{}
		m := NewSESMailer(fake, "no-reply@x.com", "", discardLogger())
		err := m.SendWithAttachment(ctx, "p@x.com", "Subject", "<p>h</p>", "t",
			domain.Attachment{Filename: CalendarFilename, Content: []byte("ics"), ContentType: CalendarContentType})
		require.NoError(t, err)
		require.NotNil(t, fake.raw)
		assert.Contains(t, string(fake.raw.RawMessage.Data), CalendarFilename)
	})

	t.Run("provider error", func(t *testing.T) {
		m := NewSESMailer(&fakeSES{sendErr: errors.New("throttled")}, "no-reply@x.com", "", discardLogger())
		assert.Error(t, m.Send(ctx, "p@x.com", "s", "h", "t"))
	})
}

type fakeMailgun struct {
	sent    []MailgunMessage
	sendErr error
}

func (f *fakeMailgun) Send(ctx context.Context, msg MailgunMessage) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, msg)
	return "<id@mg.x.com>", nil
}

func TestMailgunMailer(t *testing.T) {
	ctx := context.Background()

	t.Run("send", func(t *testing.T) {
		fake := &fakeMailgun{}
		m := NewMailgunMailer(fake, "no-reply@x.com", "Events", discardLogger())
		require.NoError(t, m.Send(ctx, "p@x.com", "Subject", "<p>h</p>", "t"))
		require.Len(t, fake.sent, 1)
		msg := fake.sent[0]
		assert.Equal(t, "Events <no-reply@x.com>", msg.From)
		assert.Equal(t, "p@x.com", msg.To)
		assert.Equal(t, "Subject", msg.Subject)
		assert.Equal(t, "<p>h</p>", msg.HTML)
		assert.Equal(t, "t", msg.Text)
		assert.Nil(t, msg.Attachment)
	})

	t.Run("send with attachment", func(t *testing.T) {
		fake := &fakeMailgun{}
		m := NewMailgunMailer(fake, "no-reply@x.com", "", discardLogger())
		attachment := domain.Attachment{Filename: CalendarFilename, Content: []byte("ics"), ContentType: CalendarContentType}
		require.NoError(t, m.SendWithAttachment(ctx, "p@x.com", "Subject", "<p>h</p>", "t", attachment))
		require.Len(t, fake.sent, 1)
		assert.Equal(t, "no-reply@x.com", fake.sent[0].From)
		require.NotNil(t, fake.sent[0].Attachment)
		assert.Equal(t, attachment, *fake.sent[0].Attachment)
	})

	t.Run("provider error", func(t *testing.T) {
		m := NewMailgunMailer(&fakeMailgun{sendErr: errors.New("rejected")}, "no-reply@x.com", "", discardLogger())
		err := m.Send(ctx, "p@x.com", "s", "h", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")
	})
}

func TestNewMailer_Mailgun(t *testing.T) {
	m, err := NewMailer(context.Background(), MailerConfig{
		Provider:    "mailgun",
		FromAddress: "no-reply@x.com",
		Mailgun:     MailgunConfig{Domain: "mg.x.com", APIKey: "key-123"},
	}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &mailgunMailer{}, m)
}

func TestNewMailer_NoCredentials(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		config MailerConfig
	}{
		{"ses without keys", MailerConfig{Provider: "ses", SES: awsconfig.Options{Region: "us-east-1"}}},
		{"mailgun without key", MailerConfig{Provider: "mailgun", Mailgun: MailgunConfig{Domain: "mg.x.com"}}},
		{"noop", MailerConfig{Provider: "noop"}},
		{"unknown", MailerConfig{Provider: "pigeon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(ctx, tt.config, discardLogger())
			require.NoError(t, err)
			assert.IsType(t, &noopMailer{}, m)
			assert.NoError(t, m.Send(ctx, "p@x.com", "s", "h", "t"))
		})
	}
}
