package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a registration. Canceling is final.
type RegistrationStatus string

const (
	RegistrationStatusActive   RegistrationStatus = "active"
	RegistrationStatusCanceled RegistrationStatus = "canceled"
)

// Registration represents a participant's subscription to an event.
// swagger:model Registration
type Registration struct {
	ID            string             `json:"id" dynamodbav:"id"`
	ParticipantID string             `json:"participant_id" dynamodbav:"participantId"`
	EventID       string             `json:"event_id" dynamodbav:"eventId"`
	Status        RegistrationStatus `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time          `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// NewRegistration creates an active Registration. ID is set by the caller before it is stored.
func NewRegistration(participantID, eventID string, createdAt time.Time) *Registration {
	return &Registration{
		ParticipantID: participantID,
		EventID:       eventID,
		Status:        RegistrationStatusActive,
		CreatedAt:     createdAt,
	}
}

// CreateRegistrationInput is the body of a subscribe request.
type CreateRegistrationInput struct {
	EventID string
}

// RegistrationRepository is the credential-store contract for the registrations table.
type RegistrationRepository interface {
	// Create stores a new registration and fails with ErrConflict when the id is already taken.
	Create(ctx context.Context, reg *Registration) error
	Put(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*Registration, error)
	ListByParticipantAndEvent(ctx context.Context, participantID, eventID string) ([]*Registration, error)
}

// RegistrationService is the registration ledger.
type RegistrationService interface {
	Create(ctx context.Context, participantID string, in CreateRegistrationInput) (*Registration, error)
	List(ctx context.Context, participantID string, params PaginationParams) (*Page[*Registration], error)
	Cancel(ctx context.Context, registrationID, participantID string) (*Registration, error)
}
