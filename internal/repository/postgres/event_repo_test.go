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

var eventColumns = []string{
	"id", "title", "slug", "capacity", "require_login", "canceled",
	"registration_open", "starts_at", "admin_email", "created_at", "updated_at",
}

var ticketColumns = []string{"id", "event_id", "title", "price", "sub_limit"}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	starts := now.Add(30 * 24 * time.Hour)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		check   func(t *testing.T, ev *domain.Event)
		wantErr error
	}{
		{
			name: "success with tickets",
			id:   "ev-uuid-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, slug, capacity, require_login`).
					WithArgs("ev-uuid-1").
					WillReturnRows(sqlmock.NewRows(eventColumns).
						AddRow("ev-uuid-1", "GopherConf", "gopherconf", 100, false, false, true, starts, "admin@example.com", now, now))
				mock.ExpectQuery(`SELECT id, event_id, title, price, sub_limit`).
					WithArgs("ev-uuid-1").
					WillReturnRows(sqlmock.NewRows(ticketColumns).
						AddRow("t1", "ev-uuid-1", "Workshop", int64(5000), 20).
						AddRow("t2", "ev-uuid-1", "General", int64(0), 0))
			},
			check: func(t *testing.T, ev *domain.Event) {
				require.Equal(t, "GopherConf", ev.Title)
				require.Equal(t, 100, ev.Capacity)
				require.Len(t, ev.Tickets, 2)
				require.Equal(t, 20, ev.Tickets[0].Limit)
			},
		},
		{
			name: "event without tickets",
			id:   "ev-uuid-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, slug, capacity, require_login`).
					WithArgs("ev-uuid-2").
					WillReturnRows(sqlmock.NewRows(eventColumns).
						AddRow("ev-uuid-2", "Meetup", "meetup", 0, false, false, true, starts, "", now, now))
				mock.ExpectQuery(`SELECT id, event_id, title, price, sub_limit`).
					WithArgs("ev-uuid-2").
					WillReturnRows(sqlmock.NewRows(ticketColumns))
			},
			check: func(t *testing.T, ev *domain.Event) {
				require.True(t, ev.Unlimited())
				require.NotNil(t, ev.Tickets)
				require.Empty(t, ev.Tickets)
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, slug, capacity, require_login`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
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
			repo := NewEventRepository(db)
			ev, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, ev)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, slug, capacity, require_login`).
		WithArgs("gopherconf").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("ev-uuid-1", "GopherConf", "gopherconf", 100, true, false, true, now.Add(time.Hour), "admin@example.com", now, now))
	mock.ExpectQuery(`SELECT id, event_id, title, price, sub_limit`).
		WithArgs("ev-uuid-1").
		WillReturnRows(sqlmock.NewRows(ticketColumns))

	repo := NewEventRepository(db)
	ev, err := repo.GetBySlug(ctx, "gopherconf")
	require.NoError(t, err)
	require.Equal(t, "ev-uuid-1", ev.ID)
	require.True(t, ev.RequireLogin)
	require.NoError(t, mock.ExpectationsWereMet())
}
