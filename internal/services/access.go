package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"compassevent/internal/domain"
)

type accessService struct {
	userRepo domain.UserRepository
}

// NewAccessService returns the authorization predicates. userRepo is read to
// check the current confirmation state instead of the token claim.
func NewAccessService(userRepo domain.UserRepository) domain.AccessService {
	return &accessService{userRepo: userRepo}
}

// CheckRoles permits everything when allowed is empty.
func (s *accessService) CheckRoles(p *domain.Principal, allowed ...domain.Role) error {
	if len(allowed) == 0 {
		return nil
	}
	if p == nil {
		return fmt.Errorf("%w: user not authenticated", domain.ErrForbidden)
	}
	if !slices.Contains(allowed, p.Role) {
		return fmt.Errorf("%w: role %q is not allowed", domain.ErrForbidden, p.Role)
	}
	return nil
}

func (s *accessService) CheckEmailConfirmed(ctx context.Context, p *domain.Principal) error {
	if p == nil {
		return fmt.Errorf("%w: user not authenticated", domain.ErrForbidden)
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: user not found", domain.ErrForbidden)
		}
		return fmt.Errorf("%w: get user: %v", domain.ErrInternal, err)
	}
	if !user.EmailConfirmed {
		return fmt.Errorf("%w: email not confirmed", domain.ErrForbidden)
	}
	return nil
}

func (s *accessService) CheckSelfOrAdmin(p *domain.Principal, targetID string) error {
	if p == nil {
		return fmt.Errorf("%w: user not authenticated", domain.ErrForbidden)
	}
	if p.IsAdmin() || p.UserID == targetID {
		return nil
	}
	return fmt.Errorf("%w: you can only access your own account", domain.ErrForbidden)
}
