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

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	uploader       domain.ImageUploader
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

// NewUserService creates the user directory.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, uploader domain.ImageUploader, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		uploader:       uploader,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *userService) Create(ctx context.Context, image *domain.File, in domain.CreateUserInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: profile image is mandatory", domain.ErrInvalidInput)
	}
	user, err := s.newUser(ctx, in)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.Upload(ctx, image, domain.FolderProfiles)
	if err != nil {
		return nil, fmt.Errorf("%w: upload profile image: %v", domain.ErrInternal, err)
	}
	user.ProfileImageURL = url
	user.EmailConfirmationToken = s.newID()

	if err := s.userRepo.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.emailService.SendConfirmation(ctx, user.Email, user.EmailConfirmationToken); err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "user_id", user.ID, "err", err)
	}
	return user.WithoutPassword(), nil
}

// CreateWithoutImage stores a user that is already confirmed. It is meant for
// bootstrap accounts and sends no email.
func (s *userService) CreateWithoutImage(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.newUser(ctx, in)
	if err != nil {
		return nil, err
	}
	user.EmailConfirmed = true
	if err := s.userRepo.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user.WithoutPassword(), nil
}

func (s *userService) newUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleParticipant
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &domain.User{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Phone:     in.Phone,
		Role:      in.Role,
		CreatedAt: s.now().UTC(),
		IsActive:  true,
	}, nil
}

// ensureEmailFree fails with ErrDuplicateEmail when email belongs to a user other than ownerID.
func (s *userService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}
	if existing.ID != ownerID {
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *userService) Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *patch.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *patch.Role)
		}
		user.Role = *patch.Role
	}
	now := s.now().UTC()
	user.UpdatedAt = &now

	if err := s.userRepo.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user.WithoutPassword(), nil
}

func (s *userService) FindAll(ctx context.Context, filter domain.UserFilter) (*domain.Page[*domain.User], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params := filter.PaginationParams.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrInternal, err)
	}

	name := strings.ToLower(filter.Name)
	email := strings.ToLower(filter.Email)
	matched := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if name != "" && !strings.Contains(strings.ToLower(u.Name), name) {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(u.Email), email) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		matched = append(matched, u.WithoutPassword())
	}
	sortUsers(matched)
	return domain.Paginate(matched, params), nil
}

func sortUsers(users []*domain.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
}

func (s *userService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.WithoutPassword(), nil
}

func (s *userService) SoftDelete(ctx context.Context, id string, requester *domain.Principal) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil || (!requester.IsAdmin() && requester.UserID != id) {
		return nil, fmt.Errorf("%w: only the account owner or an admin can delete this user", domain.ErrForbidden)
	}
	user.IsActive = false
	now := s.now().UTC()
	user.UpdatedAt = &now
	if err := s.userRepo.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	if user.Email != "" {
		data := &domain.AccountEmailData{Email: user.Email, Name: user.Name}
		if err := s.emailService.SendAccountDeactivated(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "account deactivated email failed", "user_id", user.ID, "err", err)
		}
	}
	return user.WithoutPassword(), nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return lookup(s.userRepo.GetByEmail(ctx, email))
}

func (s *userService) FindByConfirmationToken(ctx context.Context, token string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return lookup(s.userRepo.GetByConfirmationToken(ctx, token))
}

// lookup turns a repository miss into (nil, nil).
func lookup(user *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user: %v", domain.ErrInternal, err)
	}
	return user, nil
}

func (s *userService) ConfirmEmail(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.EmailConfirmed = true
	user.EmailConfirmationToken = ""
	now := s.now().UTC()
	user.UpdatedAt = &now
	if err := s.userRepo.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("confirm email: %w", err)
	}
	return user.WithoutPassword(), nil
}

func (s *userService) FindAllParticipants(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrInternal, err)
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.IsActive && u.EmailConfirmed {
			out = append(out, u.WithoutPassword())
		}
	}
	sortUsers(out)
	return out, nil
}

// get loads a user, mapping a miss to ErrUserNotFound.
func (s *userService) get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get user: %v", domain.ErrInternal, err)
	}
	return user, nil
}
