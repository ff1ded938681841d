package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event. The only transition is
// active -> inactive (soft delete).
type EventStatus string

const (
	EventStatusActive   EventStatus = "active"
	EventStatusInactive EventStatus = "inactive"
)

// Event represents an event published by an organizer.
// swagger:model Event
type Event struct {
	ID          string      `json:"id" dynamodbav:"id"`
	Name        string      `json:"name" dynamodbav:"name"`
	Description string      `json:"description" dynamodbav:"description"`
	Date        time.Time   `json:"date" dynamodbav:"date"`
	ImageURL    string      `json:"image_url" dynamodbav:"imageUrl"`
	OrganizerID string      `json:"organizer_id" dynamodbav:"organizerId"`
	Status      EventStatus `json:"status" dynamodbav:"status"`
	CreatedAt   time.Time   `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// NewEvent returns an active Event. ID is set by the caller before it is stored.
func NewEvent(name, description string, date time.Time, imageURL, organizerID string, createdAt time.Time) *Event {
	return &Event{
		Name:        name,
		Description: description,
		Date:        date,
		ImageURL:    imageURL,
		OrganizerID: organizerID,
		Status:      EventStatusActive,
		CreatedAt:   createdAt,
	}
}

// CreateEventInput holds the fields accepted when publishing an event.
type CreateEventInput struct {
	Name        string
	Description string
	Date        time.Time
}

// EventPatch is a partial update; nil fields are left unchanged.
type EventPatch struct {
	Name        *string
	Description *string
	Date        *time.Time
	OrganizerID *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Date == nil && p.OrganizerID == nil
}

// DateDirection selects which side of EventFilter.Date matches.
type DateDirection string

const (
	DateBefore DateDirection = "before"
	DateAfter  DateDirection = "after"
)

// EventFilter narrows FindAll. A nil Date disables the date comparison;
// an empty Direction means DateAfter.
type EventFilter struct {
	Name      string
	Date      *time.Time
	Direction DateDirection
	Status    EventStatus
	PaginationParams
}

// EventRepository is the credential-store contract for the events table.
type EventRepository interface {
	Put(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*Event, error)
}

// EventService is the event catalog.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput, image *File, organizerID string) (*Event, error)
	Update(ctx context.Context, eventID string, patch EventPatch, requesterID string, isAdmin bool) (*Event, error)
	FindAll(ctx context.Context, filter EventFilter) (*Page[*Event], error)
	FindOne(ctx context.Context, id string) (*Event, error)
	SoftDelete(ctx context.Context, id, userID string, role Role) (*Event, error)
	CheckIfEventNameExists(ctx context.Context, name string) (bool, error)
}
