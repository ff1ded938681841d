package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"compassevent/internal/domain"
)

const registrationColumns = `id, participant_id, event_id, status, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query,
		reg.ID, reg.ParticipantID, reg.EventID, string(reg.Status), reg.CreatedAt, nullTime(reg.UpdatedAt))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("registration %s: %w", reg.ID, domain.ErrConflict)
	}
	return nil
}

func (r *registrationRepository) Put(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		reg.ID, reg.ParticipantID, reg.EventID, string(reg.Status), reg.CreatedAt, nullTime(reg.UpdatedAt))
	return err
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE participant_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, participantID)
}

func (r *registrationRepository) ListByParticipantAndEvent(ctx context.Context, participantID, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE participant_id = $1 AND event_id = $2
		ORDER BY created_at, id
	`
	return r.list(ctx, query, participantID, eventID)
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func scanRegistration(s scanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var status string
	var updatedAt sql.NullTime
	if err := s.Scan(&reg.ID, &reg.ParticipantID, &reg.EventID, &status, &reg.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	reg.UpdatedAt = timePtr(updatedAt)
	return reg, nil
}
