package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"compassevent/internal/domain"
)

type authService struct {
	userService domain.UserService
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
}

// NewAuthService creates an AuthService that authenticates against the user directory.
func NewAuthService(userService domain.UserService, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration) domain.AuthService {
	return &authService{
		userService: userService,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	user, err := s.userService.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &domain.LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        user.WithoutPassword(),
	}, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	user, err := s.userService.FindByConfirmationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid or expired confirmation token", domain.ErrNotFound)
	}
	return s.userService.ConfirmEmail(ctx, user.ID)
}
