package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"compassevent/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	EmailConfirmed bool        `json:"email_confirmed"`
}

// JWT signs and verifies HS256 tokens with a shared secret.
type JWT struct {
	secret []byte
}

// NewJWT returns a JWT that implements both domain.TokenIssuer and domain.TokenVerifier.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Issue signs a token for user that expires after expiry.
func (j *JWT) Issue(user *domain.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email:          user.Email,
		Role:           user.Role,
		EmailConfirmed: user.EmailConfirmed,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses tokenString, checks signature and expiry, and requires the
// subject, email and role claims.
func (j *JWT) Verify(tokenString string) (*domain.Principal, error) {
	claims := &jwtClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: invalid token payload", domain.ErrUnauthorized)
	}
	return &domain.Principal{
		UserID:         claims.Subject,
		Email:          claims.Email,
		Role:           claims.Role,
		EmailConfirmed: claims.EmailConfirmed,
	}, nil
}
