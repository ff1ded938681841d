package domain

import (
	"context"
	"time"
)

// Principal is the authenticated identity derived from a verified bearer token.
type Principal struct {
	UserID         string
	Email          string
	Role           Role
	EmailConfirmed bool
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(user *User, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the principal it carries.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// AccessService evaluates the authorization predicates. Denial is always
// reported as an error wrapping ErrForbidden.
type AccessService interface {
	CheckRoles(p *Principal, allowed ...Role) error
	CheckEmailConfirmed(ctx context.Context, p *Principal) error
	CheckSelfOrAdmin(p *Principal, targetID string) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

// AuthService handles login and email confirmation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ConfirmEmail(ctx context.Context, token string) (*User, error)
}
