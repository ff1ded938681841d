package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compassevent/internal/domain"
)

func TestRegistrationController_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
	}{
		{"subscribed", `{"event_id":"evt-1"}`, nil, http.StatusCreated},
		{"missing event id", `{}`, nil, http.StatusBadRequest},
		{"event not found", `{"event_id":"nope"}`, domain.ErrEventNotFound, http.StatusNotFound},
		{"already registered", `{"event_id":"evt-1"}`, fmt.Errorf("%w: already registered", domain.ErrInvalidInput), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{err: tt.fakeErr}
			ctrl := NewRegistrationController(testLogger, fake)
			req := withPrincipal(httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(tt.body)), participant)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusCreated {
				var reg domain.Registration
				decodeEnvelope(t, rr, &reg)
				assert.Equal(t, "reg-new", reg.ID)
				assert.Equal(t, participant.UserID, fake.lastParticipantID)
				assert.Equal(t, "evt-1", fake.lastEventID)
			}
		})
	}
}

func TestRegistrationController_List(t *testing.T) {
	fake := &fakeRegistrationService{}
	ctrl := NewRegistrationController(testLogger, fake)
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/registrations?page=2&limit=5", nil), participant)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, participant.UserID, fake.lastParticipantID)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 5}, fake.lastParams)
	var page domain.Page[*domain.Registration]
	decodeEnvelope(t, rr, &page)
	assert.NotNil(t, page.Data)
}

func TestRegistrationController_List_Unauthenticated(t *testing.T) {
	ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{})
	rr := httptest.NewRecorder()

	ctrl.List(rr, httptest.NewRequest(http.MethodGet, "/registrations", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegistrationController_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{"canceled", nil, http.StatusOK},
		{"someone else's", domain.ErrForbidden, http.StatusForbidden},
		{"already canceled", fmt.Errorf("%w: registration already canceled", domain.ErrInvalidInput), http.StatusBadRequest},
		{"missing", domain.ErrRegistrationNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{err: tt.fakeErr}
			ctrl := NewRegistrationController(testLogger, fake)
			mux := http.NewServeMux()
			mux.HandleFunc("DELETE /registrations/{id}", ctrl.Cancel)
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, withPrincipal(httptest.NewRequest(http.MethodDelete, "/registrations/reg-1", nil), participant))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "reg-1", fake.lastID)
			assert.Equal(t, participant.UserID, fake.lastParticipantID)
		})
	}
}
