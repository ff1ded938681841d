package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/delivery/http/middleware"
	"compassevent/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	participant = &domain.Principal{UserID: "user-123", Email: "p@example.com", Role: domain.RoleParticipant, EmailConfirmed: true}
	organizer   = &domain.Principal{UserID: "org-1", Email: "o@example.com", Role: domain.RoleOrganizer, EmailConfirmed: true}
	admin       = &domain.Principal{UserID: "admin-1", Email: "a@example.com", Role: domain.RoleAdmin, EmailConfirmed: true}
)

func withPrincipal(req *http.Request, p *domain.Principal) *http.Request {
	if p == nil {
		return req
	}
	return req.WithContext(middleware.SetPrincipal(req.Context(), p))
}

// decodeEnvelope decodes the response envelope and, when out is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if out != nil && envelope.Data != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return envelope
}

// multipartBody builds a multipart/form-data body with the given fields and an
// optional image part.
func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile(helpers.ImageField, "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	loginResult      *domain.LoginResult
	loginErr         error
	confirmErr       error
	lastEmail        string
	lastPassword     string
	lastConfirmToken string
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*domain.LoginResult, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthService) ConfirmEmail(_ context.Context, token string) (*domain.User, error) {
	f.lastConfirmToken = token
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &domain.User{ID: "user-123", EmailConfirmed: true}, nil
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	err          error
	lastImage    *domain.File
	lastInput    domain.CreateUserInput
	lastUserID   string
	lastPatch    domain.UserPatch
	lastFilter   domain.UserFilter
	lastID       string
	lastDeleteBy *domain.Principal
	page         *domain.Page[*domain.User]
}

func (f *fakeUserService) Create(_ context.Context, image *domain.File, in domain.CreateUserInput) (*domain.User, error) {
	f.lastImage, f.lastInput = image, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: "user-new", Name: in.Name, Email: in.Email, Password: "hash", Role: in.Role, IsActive: true}, nil
}

func (f *fakeUserService) CreateWithoutImage(_ context.Context, in domain.CreateUserInput) (*domain.User, error) {
	return &domain.User{ID: "user-new", Email: in.Email}, f.err
}

func (f *fakeUserService) Update(_ context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	f.lastUserID, f.lastPatch = userID, patch
	if f.err != nil {
		return nil, f.err
	}
	u := &domain.User{ID: userID}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	return u, nil
}

func (f *fakeUserService) FindAll(_ context.Context, filter domain.UserFilter) (*domain.Page[*domain.User], error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &domain.Page[*domain.User]{Page: 1, Limit: 10, Data: []*domain.User{}}, nil
}

func (f *fakeUserService) FindByID(_ context.Context, id string) (*domain.User, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id, Name: "Alice"}, nil
}

func (f *fakeUserService) SoftDelete(_ context.Context, id string, requester *domain.Principal) (*domain.User, error) {
	f.lastID, f.lastDeleteBy = id, requester
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id, IsActive: false}, nil
}

func (f *fakeUserService) FindByEmail(context.Context, string) (*domain.User, error) { return nil, nil }

func (f *fakeUserService) FindByConfirmationToken(context.Context, string) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserService) ConfirmEmail(context.Context, string) (*domain.User, error) { return nil, nil }

func (f *fakeUserService) FindAllParticipants(context.Context) ([]*domain.User, error) {
	return nil, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err             error
	lastInput       domain.CreateEventInput
	lastImage       *domain.File
	lastOrganizerID string
	lastID          string
	lastPatch       domain.EventPatch
	lastRequesterID string
	lastIsAdmin     bool
	lastRole        domain.Role
	lastFilter      domain.EventFilter
}

func (f *fakeEventService) Create(_ context.Context, in domain.CreateEventInput, image *domain.File, organizerID string) (*domain.Event, error) {
	f.lastInput, f.lastImage, f.lastOrganizerID = in, image, organizerID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: "evt-new", Name: in.Name, Date: in.Date, OrganizerID: organizerID, Status: domain.EventStatusActive}, nil
}

func (f *fakeEventService) Update(_ context.Context, eventID string, patch domain.EventPatch, requesterID string, isAdmin bool) (*domain.Event, error) {
	f.lastID, f.lastPatch, f.lastRequesterID, f.lastIsAdmin = eventID, patch, requesterID, isAdmin
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: eventID, Status: domain.EventStatusActive}, nil
}

func (f *fakeEventService) FindAll(_ context.Context, filter domain.EventFilter) (*domain.Page[*domain.Event], error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Page[*domain.Event]{Total: 1, Page: 1, Limit: 10, Data: []*domain.Event{{ID: "evt-1"}}}, nil
}

func (f *fakeEventService) FindOne(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, Date: time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeEventService) SoftDelete(_ context.Context, id, userID string, role domain.Role) (*domain.Event, error) {
	f.lastID, f.lastRequesterID, f.lastRole = id, userID, role
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, Status: domain.EventStatusInactive}, nil
}

func (f *fakeEventService) CheckIfEventNameExists(context.Context, string) (bool, error) {
	return false, nil
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	err               error
	lastParticipantID string
	lastEventID       string
	lastID            string
	lastParams        domain.PaginationParams
}

func (f *fakeRegistrationService) Create(_ context.Context, participantID string, in domain.CreateRegistrationInput) (*domain.Registration, error) {
	f.lastParticipantID, f.lastEventID = participantID, in.EventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: "reg-new", ParticipantID: participantID, EventID: in.EventID, Status: domain.RegistrationStatusActive}, nil
}

func (f *fakeRegistrationService) List(_ context.Context, participantID string, params domain.PaginationParams) (*domain.Page[*domain.Registration], error) {
	f.lastParticipantID, f.lastParams = participantID, params
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Page[*domain.Registration]{Page: 1, Limit: 10, Data: []*domain.Registration{}}, nil
}

func (f *fakeRegistrationService) Cancel(_ context.Context, registrationID, participantID string) (*domain.Registration, error) {
	f.lastID, f.lastParticipantID = registrationID, participantID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: registrationID, ParticipantID: participantID, Status: domain.RegistrationStatusCanceled}, nil
}
