package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"compassevent/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userService    domain.UserService
	uploader       domain.ImageUploader
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

// NewEventService creates the event catalog. userService supplies the organizer
// and participant addresses for notifications.
func NewEventService(eventRepo domain.EventRepository,
	userService domain.UserService,
	uploader domain.ImageUploader,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userService:    userService,
		uploader:       uploader,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *eventService) Create(ctx context.Context, in domain.CreateEventInput, image *domain.File, organizerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: event image is mandatory", domain.ErrInvalidInput)
	}
	if organizerID == "" {
		return nil, fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	exists, err := s.checkName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEventName
	}

	imageURL, err := s.uploader.Upload(ctx, image, domain.FolderEvents)
	if err != nil {
		return nil, fmt.Errorf("%w: upload event image: %v", domain.ErrInternal, err)
	}
	if imageURL == "" {
		return nil, fmt.Errorf("%w: failed to upload event image", domain.ErrInternal)
	}

	event := domain.NewEvent(in.Name, in.Description, in.Date.UTC(), imageURL, organizerID, s.now().UTC())
	event.ID = s.newID()
	if err := s.eventRepo.Put(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.notify(ctx, event, s.emailService.SendEventCreated)
	return event, nil
}

func (s *eventService) Update(ctx context.Context, eventID string, patch domain.EventPatch, requesterID string, isAdmin bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	event, err := s.get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID && !isAdmin {
		return nil, fmt.Errorf("%w: you cannot edit this event", domain.ErrForbidden)
	}

	if patch.Name != nil && *patch.Name != event.Name {
		exists, err := s.checkName(ctx, *patch.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEventName
		}
		event.Name = *patch.Name
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Date != nil {
		event.Date = patch.Date.UTC()
	}
	if patch.OrganizerID != nil && isAdmin {
		event.OrganizerID = *patch.OrganizerID
	}
	now := s.now().UTC()
	event.UpdatedAt = &now

	if err := s.eventRepo.Put(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) FindAll(ctx context.Context, filter domain.EventFilter) (*domain.Page[*domain.Event], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params := filter.PaginationParams.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrInternal, err)
	}

	direction := filter.Direction
	if direction == "" {
		direction = domain.DateAfter
	}
	name := strings.ToLower(filter.Name)
	matched := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if name != "" && !strings.Contains(strings.ToLower(e.Name), name) {
			continue
		}
		if filter.Date != nil {
			if direction == domain.DateBefore && !e.Date.Before(*filter.Date) {
				continue
			}
			if direction == domain.DateAfter && !e.Date.After(*filter.Date) {
				continue
			}
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return domain.Paginate(matched, params), nil
}

func (s *eventService) FindOne(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.get(ctx, id)
}

func (s *eventService) SoftDelete(ctx context.Context, id, userID string, role domain.Role) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && event.OrganizerID != userID {
		return nil, fmt.Errorf("%w: you do not have permission to delete this event", domain.ErrForbidden)
	}
	event.Status = domain.EventStatusInactive
	now := s.now().UTC()
	event.UpdatedAt = &now
	if err := s.eventRepo.Put(ctx, event); err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}

	s.notify(ctx, event, s.emailService.SendEventCanceled)
	return event, nil
}

func (s *eventService) CheckIfEventNameExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.checkName(ctx, name)
}

func (s *eventService) checkName(ctx context.Context, name string) (bool, error) {
	exists, err := s.eventRepo.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check event name: %w", err)
	}
	return exists, nil
}

// get loads an event. A miss stays ErrEventNotFound; anything else becomes ErrInternal.
func (s *eventService) get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch event: %v", domain.ErrInternal, err)
	}
	return event, nil
}

// notify sends one message to the organizer and one to every confirmed
// participant, each address at most once. Failures are logged only.
func (s *eventService) notify(ctx context.Context, event *domain.Event, send func(context.Context, *domain.EventEmailData) error) {
	var recipients []string
	seen := make(map[string]bool)
	add := func(email string) {
		if email == "" || seen[email] {
			return
		}
		seen[email] = true
		recipients = append(recipients, email)
	}

	organizer, err := s.userService.FindByID(ctx, event.OrganizerID)
	if err != nil {
		s.logger.WarnContext(ctx, "event organizer lookup failed", "event_id", event.ID, "err", err)
	} else {
		add(organizer.Email)
	}
	participants, err := s.userService.FindAllParticipants(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "participant lookup failed", "event_id", event.ID, "err", err)
	}
	for _, p := range participants {
		add(p.Email)
	}

	for _, email := range recipients {
		if err := send(ctx, &domain.EventEmailData{Email: email, Event: event}); err != nil {
			s.logger.WarnContext(ctx, "event notification failed", "event_id", event.ID, "to", email, "err", err)
		}
	}
}
