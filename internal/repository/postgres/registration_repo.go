package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventregistry/internal/domain"
)

// committedStatuses is the set of statuses that hold places. Inlined into
// queries as a positional fragment so the counting stays in one place.
const committedStatuses = `('Reserved', 'Reviewed', 'AwaitingPayment', 'Valid')`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Reserve creates a Reserved registration inside one transaction that locks
// the event row first. The row lock serializes concurrent check-then-create
// sequences per event: two visitors racing for the last place cannot both
// observe it free.
func (r *registrationRepository) Reserve(ctx context.Context, event *domain.Event) (*domain.Registration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		event.ID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if capacity > 0 {
		var committed int
		err = tx.QueryRowContext(ctx, sumPlacesQuery, event.ID, "").Scan(&committed)
		if err != nil {
			return nil, fmt.Errorf("count committed places: %w", err)
		}
		if committed+1 > capacity {
			err = domain.ErrCapacityExceeded
			return nil, err
		}
	}

	now := time.Now()
	reg := &domain.Registration{
		EventID:   event.ID,
		Status:    domain.StatusReserved,
		Attendees: []*domain.Attendee{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, reg.EventID, reg.Status, reg.CreatedAt, reg.UpdatedAt).Scan(&reg.ID)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}
	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, status, registrant_name, registrant_surname, registrant_email, amount_paid, token_hash, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&reg.ID, &reg.EventID, &reg.Status, &reg.RegistrantName, &reg.RegistrantSurname,
			&reg.RegistrantEmail, &reg.AmountPaid, &reg.TokenHash, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadAttendees(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) loadAttendees(ctx context.Context, reg *domain.Registration) error {
	query := `
		SELECT id, registration_id, ticket_id, first_name, surname, email, price
		FROM attendees
		WHERE registration_id = $1
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, reg.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var attendees []*domain.Attendee
	for rows.Next() {
		a := &domain.Attendee{}
		if err := rows.Scan(&a.ID, &a.RegistrationID, &a.TicketID, &a.FirstName, &a.Surname, &a.Email, &a.Price); err != nil {
			return err
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	reg.Attendees = attendees
	return nil
}

// Update persists the registration's fields and rewrites its attendee list
// in one transaction. The attendee list is small and owned by a single
// visitor, so delete-and-reinsert keeps ordering trivial.
func (r *registrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	reg.UpdatedAt = time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE registrations
		SET status = $1, registrant_name = $2, registrant_surname = $3, registrant_email = $4,
		    amount_paid = $5, token_hash = $6, updated_at = $7
		WHERE id = $8
	`, reg.Status, reg.RegistrantName, reg.RegistrantSurname, reg.RegistrantEmail,
		reg.AmountPaid, reg.TokenHash, reg.UpdatedAt, reg.ID)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendees WHERE registration_id = $1`, reg.ID); err != nil {
		return fmt.Errorf("delete attendees: %w", err)
	}
	for i, a := range reg.Attendees {
		a.RegistrationID = reg.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attendees (id, registration_id, ticket_id, first_name, surname, email, price, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, a.ID, a.RegistrationID, a.TicketID, a.FirstName, a.Surname, a.Email, a.Price, i)
		if err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// sumPlacesQuery counts places held against an event: one per attendee, and
// at least one per committed registration so a fresh reservation with no
// attendees yet still holds its place. $2 excludes a registration by ID;
// the empty string excludes nothing.
const sumPlacesQuery = `
	SELECT COALESCE(SUM(GREATEST(COALESCE(a.cnt, 0), 1)), 0)
	FROM registrations r
	LEFT JOIN (
		SELECT registration_id, COUNT(*) AS cnt
		FROM attendees
		GROUP BY registration_id
	) a ON a.registration_id = r.id
	WHERE r.event_id = $1
	  AND r.status IN ` + committedStatuses + `
	  AND r.id::text <> $2
`

const sumTicketPlacesQuery = `
	SELECT COUNT(*)
	FROM attendees a
	JOIN registrations r ON r.id = a.registration_id
	WHERE r.event_id = $1
	  AND a.ticket_id = $2
	  AND r.status IN ` + committedStatuses + `
	  AND r.id::text <> $3
`

func (r *registrationRepository) SumCommittedPlaces(ctx context.Context, eventID, ticketID, excludeID string) (int, error) {
	var n int
	var err error
	if ticketID == "" {
		err = r.DB.QueryRowContext(ctx, sumPlacesQuery, eventID, excludeID).Scan(&n)
	} else {
		err = r.DB.QueryRowContext(ctx, sumTicketPlacesQuery, eventID, ticketID, excludeID).Scan(&n)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
