package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"compassevent/internal/domain"
)

const testTimeout = 5 * time.Second

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	order   []string
	getErr  error
	listErr error
	putErr  error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		_ = f.Put(context.Background(), u)
	}
	return f
}

func (f *fakeUserRepo) Put(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		f.order = append(f.order, u.ID)
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByConfirmationToken(ctx context.Context, token string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return token != "" && u.EmailConfirmationToken == token })
}

func (f *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, id := range f.order {
		if u := f.byID[id]; match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.User, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) stored(id string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	order  []string
	getErr error
	putErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		_ = f.Put(context.Background(), e)
	}
	return f
}

func (f *fakeEventRepo) Put(ctx context.Context, e *domain.Event) error {
	if f.putErr != nil {
		return f.putErr
	}
	if _, ok := f.byID[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, e := range f.byID {
		if e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

// fakeRegistrationRepo implements domain.RegistrationRepository for tests.
type fakeRegistrationRepo struct {
	byID      map[string]*domain.Registration
	order     []string
	createErr error
	listErr   error
}

func newFakeRegistrationRepo(regs ...*domain.Registration) *fakeRegistrationRepo {
	f := &fakeRegistrationRepo{byID: make(map[string]*domain.Registration)}
	for _, r := range regs {
		_ = f.Put(context.Background(), r)
	}
	return f
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, r *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[r.ID]; ok {
		return domain.ErrConflict
	}
	return f.Put(ctx, r)
}

func (f *fakeRegistrationRepo) Put(ctx context.Context, r *domain.Registration) error {
	if _, ok := f.byID[r.ID]; !ok {
		f.order = append(f.order, r.ID)
	}
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByParticipant(ctx context.Context, participantID string) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool { return r.ParticipantID == participantID })
}

func (f *fakeRegistrationRepo) ListByParticipantAndEvent(ctx context.Context, participantID, eventID string) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool {
		return r.ParticipantID == participantID && r.EventID == eventID
	})
}

func (f *fakeRegistrationRepo) filter(match func(*domain.Registration) bool) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Registration
	for _, id := range f.order {
		if r := f.byID[id]; match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeHasher implements domain.PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeUploader implements domain.ImageUploader for tests.
type fakeUploader struct {
	url     string
	err     error
	folders []string
}

func (f *fakeUploader) Upload(ctx context.Context, file *domain.File, folder string) (string, error) {
	f.folders = append(f.folders, folder)
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://bucket.s3.us-east-1.amazonaws.com/" + folder + "/" + file.Name, nil
}

type sentEmail struct {
	kind string
	to   string
}

// fakeEmailService implements domain.EmailService for tests and records every call.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmailService) record(kind, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{kind: kind, to: to})
	return f.err
}

func (f *fakeEmailService) SendConfirmation(ctx context.Context, email, token string) error {
	return f.record("confirmation", email)
}

func (f *fakeEmailService) SendAccountDeactivated(ctx context.Context, data *domain.AccountEmailData) error {
	return f.record("account_deactivated", data.Email)
}

func (f *fakeEmailService) SendEventCreated(ctx context.Context, data *domain.EventEmailData) error {
	return f.record("event_created", data.Email)
}

func (f *fakeEmailService) SendEventCanceled(ctx context.Context, data *domain.EventEmailData) error {
	return f.record("event_canceled", data.Email)
}

func (f *fakeEmailService) SendEventSubscription(ctx context.Context, data *domain.EventEmailData) error {
	return f.record("event_subscription", data.Email)
}

func (f *fakeEmailService) SendSubscriptionCanceled(ctx context.Context, data *domain.EventEmailData) error {
	return f.record("subscription_canceled", data.Email)
}

func (f *fakeEmailService) recipients(kind string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.kind == kind {
			out = append(out, s.to)
		}
	}
	return out
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(user *domain.User, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + user.ID, nil
}

// fakeMailer implements domain.Mailer for tests.
type fakeMailer struct {
	to          string
	subject     string
	html        string
	attachments []domain.Attachment
	err         error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html = to, subject, html
	return f.err
}

func (f *fakeMailer) SendWithAttachment(ctx context.Context, to, subject, html, text string, a domain.Attachment) error {
	f.to, f.subject, f.html = to, subject, html
	f.attachments = append(f.attachments, a)
	return f.err
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	body := name
	if d, ok := data.(*domain.ConfirmationEmailData); ok {
		body = d.Link
	}
	return strings.ToUpper(name), "<p>" + body + "</p>", body, nil
}

// fakeCalendar implements domain.CalendarBuilder for tests.
type fakeCalendar struct{}

func (fakeCalendar) Build(e *domain.Event) ([]byte, error) {
	return []byte("BEGIN:VCALENDAR " + e.ID), nil
}

func image() *domain.File {
	return &domain.File{Name: "pic.png", ContentType: "image/png", Data: []byte("png")}
}

func strPtr(s string) *string { return &s }
