package domain

import (
	"context"
	"time"
)

// Role is an application role carried by every user and by the token principal.
type Role string

const (
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleParticipant, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user.
// The password hash and the confirmation token never leave the service layer
// in JSON form.
// swagger:model User
type User struct {
	ID                     string     `json:"id" dynamodbav:"id"`
	Name                   string     `json:"name" dynamodbav:"name"`
	Email                  string     `json:"email" dynamodbav:"email"`
	Password               string     `json:"-" dynamodbav:"password"`
	Phone                  string     `json:"phone" dynamodbav:"phone"`
	Role                   Role       `json:"role" dynamodbav:"role"`
	ProfileImageURL        string     `json:"profile_image_url" dynamodbav:"profileImageUrl"`
	CreatedAt              time.Time  `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty" dynamodbav:"updatedAt,omitempty"`
	IsActive               bool       `json:"is_active" dynamodbav:"isActive"`
	EmailConfirmed         bool       `json:"email_confirmed" dynamodbav:"emailConfirmed"`
	EmailConfirmationToken string     `json:"-" dynamodbav:"emailConfirmationToken,omitempty"`
}

// WithoutPassword returns a copy of u with the password hash cleared.
func (u *User) WithoutPassword() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	return &cp
}

// CreateUserInput holds the fields accepted on sign-up.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     Role
}

// UserPatch is a partial update; nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
	Role     *Role
}

// IsEmpty reports whether the patch carries no field at all.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Phone == nil && p.Role == nil
}

// UserFilter narrows FindAll. Name and Email are case-insensitive substrings,
// Role is an exact match.
type UserFilter struct {
	Name  string
	Email string
	Role  Role
	PaginationParams
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// UserRepository is the credential-store contract for the users table.
// GetBy* methods return ErrNotFound when nothing matches.
type UserRepository interface {
	Put(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByConfirmationToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// UserService is the user directory.
type UserService interface {
	Create(ctx context.Context, image *File, in CreateUserInput) (*User, error)
	CreateWithoutImage(ctx context.Context, in CreateUserInput) (*User, error)
	Update(ctx context.Context, userID string, patch UserPatch) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) (*Page[*User], error)
	FindByID(ctx context.Context, id string) (*User, error)
	SoftDelete(ctx context.Context, id string, requester *Principal) (*User, error)
	// FindByEmail and FindByConfirmationToken return (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByConfirmationToken(ctx context.Context, token string) (*User, error)
	ConfirmEmail(ctx context.Context, userID string) (*User, error)
	FindAllParticipants(ctx context.Context) ([]*User, error)
}
