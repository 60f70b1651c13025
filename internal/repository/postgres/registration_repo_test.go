package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventregistry/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "ev-uuid-1", Capacity: 2}

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:  "success",
			event: event,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-uuid-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
				mock.ExpectQuery(`SELECT COALESCE\(SUM\(GREATEST`).
					WithArgs("ev-uuid-1", "").
					WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-uuid-1"))
				mock.ExpectCommit()
			},
		},
		{
			name:  "capacity exceeded rolls back",
			event: event,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-uuid-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
				mock.ExpectQuery(`SELECT COALESCE\(SUM\(GREATEST`).
					WithArgs("ev-uuid-1", "").
					WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name:  "unlimited event skips the count",
			event: &domain.Event{ID: "ev-uuid-1", Capacity: 0},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-uuid-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(0))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-uuid-1"))
				mock.ExpectCommit()
			},
		},
		{
			name:  "missing event",
			event: event,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-uuid-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg, err := repo.Reserve(ctx, tt.event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, "reg-uuid-1", reg.ID)
			require.Equal(t, domain.StatusReserved, reg.Status)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	regColumns := []string{
		"id", "event_id", "status", "registrant_name", "registrant_surname",
		"registrant_email", "amount_paid", "token_hash", "created_at", "updated_at",
	}
	attColumns := []string{"id", "registration_id", "ticket_id", "first_name", "surname", "email", "price"}

	t.Run("success with attendees", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, status, registrant_name`).
			WithArgs("reg-uuid-1").
			WillReturnRows(sqlmock.NewRows(regColumns).
				AddRow("reg-uuid-1", "ev-uuid-1", "Reviewed", "Ann", "Tester", "ann@example.com", int64(0), "", now, now))
		mock.ExpectQuery(`SELECT id, registration_id, ticket_id, first_name`).
			WithArgs("reg-uuid-1").
			WillReturnRows(sqlmock.NewRows(attColumns).
				AddRow("a1", "reg-uuid-1", "t1", "Ann", "Tester", "ann@example.com", int64(5000)).
				AddRow("a2", "reg-uuid-1", "t1", "Bob", "Tester", "bob@example.com", int64(5000)))

		repo := NewRegistrationRepository(db)
		reg, err := repo.GetByID(ctx, "reg-uuid-1")
		require.NoError(t, err)
		require.Equal(t, domain.StatusReviewed, reg.Status)
		require.Len(t, reg.Attendees, 2)
		require.Equal(t, int64(10000), reg.Total())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no attendees yields empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, status, registrant_name`).
			WithArgs("reg-uuid-1").
			WillReturnRows(sqlmock.NewRows(regColumns).
				AddRow("reg-uuid-1", "ev-uuid-1", "Reserved", "", "", "", int64(0), "", now, now))
		mock.ExpectQuery(`SELECT id, registration_id, ticket_id, first_name`).
			WithArgs("reg-uuid-1").
			WillReturnRows(sqlmock.NewRows(attColumns))

		repo := NewRegistrationRepository(db)
		reg, err := repo.GetByID(ctx, "reg-uuid-1")
		require.NoError(t, err)
		require.NotNil(t, reg.Attendees)
		require.Empty(t, reg.Attendees)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, status, registrant_name`).
			WithArgs("reg-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(db)
		_, err = repo.GetByID(ctx, "reg-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_Update(t *testing.T) {
	ctx := context.Background()
	reg := &domain.Registration{
		ID:              "reg-uuid-1",
		EventID:         "ev-uuid-1",
		Status:          domain.StatusReviewed,
		RegistrantName:  "Ann",
		RegistrantEmail: "ann@example.com",
		Attendees: []*domain.Attendee{
			{ID: "a1", TicketID: "t1", FirstName: "Ann", Surname: "Tester", Email: "ann@example.com", Price: 5000},
		},
	}

	t.Run("rewrites the attendee list", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM attendees WHERE registration_id = \$1`).
			WithArgs("reg-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO attendees`).
			WithArgs("a1", "reg-uuid-1", "t1", "Ann", "Tester", "ann@example.com", int64(5000), 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.Update(ctx, reg))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing registration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		require.ErrorIs(t, repo.Update(ctx, reg), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_SumCommittedPlaces(t *testing.T) {
	ctx := context.Background()

	t.Run("event wide", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(GREATEST`).
			WithArgs("ev-uuid-1", "reg-uuid-9").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(7))

		repo := NewRegistrationRepository(db)
		n, err := repo.SumCommittedPlaces(ctx, "ev-uuid-1", "", "reg-uuid-9")
		require.NoError(t, err)
		require.Equal(t, 7, n)
	})

	t.Run("per ticket", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM attendees a\s+JOIN registrations r`).
			WithArgs("ev-uuid-1", "t-uuid-1", "").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		repo := NewRegistrationRepository(db)
		n, err := repo.SumCommittedPlaces(ctx, "ev-uuid-1", "t-uuid-1", "")
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})
}
