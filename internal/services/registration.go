package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"compassevent/internal/domain"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventService     domain.EventService
	userService      domain.UserService
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
	newID            func() string
}

// NewRegistrationService creates the registration ledger.
func NewRegistrationService(registrationRepo domain.RegistrationRepository,
	eventService domain.EventService,
	userService domain.UserService,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventService:     eventService,
		userService:      userService,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
		newID:            uuid.NewString,
	}
}

func (s *registrationService) Create(ctx context.Context, participantID string, in domain.CreateRegistrationInput) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventService.FindOne(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusActive {
		return nil, fmt.Errorf("%w: event is not active", domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	if event.Date.Before(now) {
		return nil, fmt.Errorf("%w: event has already occurred", domain.ErrInvalidInput)
	}

	existing, err := s.checkExistingRegistration(ctx, participantID, in.EventID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == domain.RegistrationStatusActive {
		return nil, fmt.Errorf("%w: registration already exists", domain.ErrInvalidInput)
	}

	reg := domain.NewRegistration(participantID, in.EventID, now)
	reg.ID = s.newID()
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("%w: create registration: %v", domain.ErrInternal, err)
	}

	s.sendToParticipant(ctx, participantID, event, s.emailService.SendEventSubscription)
	return reg, nil
}

func (s *registrationService) List(ctx context.Context, participantID string, params domain.PaginationParams) (*domain.Page[*domain.Registration], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	regs, err := s.registrationRepo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list registrations: %v", domain.ErrInternal, err)
	}
	sort.SliceStable(regs, func(i, j int) bool {
		if !regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].CreatedAt.Before(regs[j].CreatedAt)
		}
		return regs[i].ID < regs[j].ID
	})
	return domain.Paginate(regs, params), nil
}

func (s *registrationService) Cancel(ctx context.Context, registrationID, participantID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("%w: get registration: %v", domain.ErrInternal, err)
	}
	if reg.ParticipantID != participantID {
		return nil, fmt.Errorf("%w: you cannot cancel this registration", domain.ErrForbidden)
	}
	if reg.Status == domain.RegistrationStatusCanceled {
		return nil, fmt.Errorf("%w: registration is already canceled", domain.ErrInvalidInput)
	}
	reg.Status = domain.RegistrationStatusCanceled
	now := s.now().UTC()
	reg.UpdatedAt = &now
	if err := s.registrationRepo.Put(ctx, reg); err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}

	event, err := s.eventService.FindOne(ctx, reg.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "event lookup for cancel notification failed", "registration_id", reg.ID, "err", err)
		return reg, nil
	}
	s.sendToParticipant(ctx, participantID, event, s.emailService.SendSubscriptionCanceled)
	return reg, nil
}

// checkExistingRegistration returns the registration for the pair, preferring an active one, or nil.
func (s *registrationService) checkExistingRegistration(ctx context.Context, participantID, eventID string) (*domain.Registration, error) {
	regs, err := s.registrationRepo.ListByParticipantAndEvent(ctx, participantID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: check existing registration: %v", domain.ErrInternal, err)
	}
	if len(regs) == 0 {
		return nil, nil
	}
	for _, r := range regs {
		if r.Status == domain.RegistrationStatusActive {
			return r, nil
		}
	}
	return regs[0], nil
}

func (s *registrationService) sendToParticipant(ctx context.Context, participantID string, event *domain.Event, send func(context.Context, *domain.EventEmailData) error) {
	user, err := s.userService.FindByID(ctx, participantID)
	if err != nil {
		s.logger.WarnContext(ctx, "participant lookup failed", "participant_id", participantID, "err", err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := send(ctx, &domain.EventEmailData{Email: user.Email, Event: event}); err != nil {
		s.logger.WarnContext(ctx, "registration notification failed", "participant_id", participantID, "event_id", event.ID, "err", err)
	}
}
