package postgres

import (
	"context"
	"database/sql"
	"errors"

	"compassevent/internal/domain"
)

const eventColumns = `id, name, description, date, image_url, organizer_id, status, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Put(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			image_url = EXCLUDED.image_url,
			organizer_id = EXCLUDED.organizer_id,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Date, e.ImageURL, e.OrganizerID, string(e.Status), e.CreatedAt, nullTime(e.UpdatedAt),
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE name = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var updatedAt sql.NullTime
	if err := s.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.ImageURL, &e.OrganizerID, &status, &e.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	e.UpdatedAt = timePtr(updatedAt)
	return e, nil
}
