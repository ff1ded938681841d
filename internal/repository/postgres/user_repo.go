package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"compassevent/internal/domain"
)

const userColumns = `id, name, email, password, phone, role, profile_image_url, created_at, updated_at, is_active, email_confirmed, email_confirmation_token`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Put(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			phone = EXCLUDED.phone,
			role = EXCLUDED.role,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = EXCLUDED.updated_at,
			is_active = EXCLUDED.is_active,
			email_confirmed = EXCLUDED.email_confirmed,
			email_confirmation_token = EXCLUDED.email_confirmation_token
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Password, u.Phone, string(u.Role), u.ProfileImageURL,
		u.CreatedAt, nullTime(u.UpdatedAt), u.IsActive, u.EmailConfirmed, nullString(u.EmailConfirmationToken),
	)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) GetByConfirmationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE email_confirmation_token = $1 LIMIT 1`
	return r.getOne(ctx, query, token)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(s scanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	var updatedAt sql.NullTime
	var token sql.NullString
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &role, &u.ProfileImageURL,
		&u.CreatedAt, &updatedAt, &u.IsActive, &u.EmailConfirmed, &token)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.UpdatedAt = timePtr(updatedAt)
	u.EmailConfirmationToken = token.String
	return u, nil
}
