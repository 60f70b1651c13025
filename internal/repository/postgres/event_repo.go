package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventregistry/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, slug, capacity, require_login, canceled, registration_open, starts_at, admin_email, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `
		SELECT id, title, slug, capacity, require_login, canceled, registration_open, starts_at, admin_email, created_at, updated_at
		FROM events
		WHERE slug = $1
	`
	return r.getOne(ctx, query, slug)
}

func (r *eventRepository) getOne(ctx context.Context, query string, arg any) (*domain.Event, error) {
	event := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&event.ID, &event.Title, &event.Slug, &event.Capacity, &event.RequireLogin,
			&event.Canceled, &event.RegistrationOpen, &event.StartsAt, &event.AdminEmail,
			&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTickets(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) loadTickets(ctx context.Context, event *domain.Event) error {
	query := `
		SELECT id, event_id, title, price, sub_limit
		FROM tickets
		WHERE event_id = $1
		ORDER BY price DESC, title
	`
	rows, err := r.DB.QueryContext(ctx, query, event.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.EventID, &t.Title, &t.Price, &t.Limit); err != nil {
			return err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if tickets == nil {
		tickets = []*domain.Ticket{}
	}
	event.Tickets = tickets
	return nil
}
