package domain

import (
	"context"
	"time"
)

// Event represents a schedulable occurrence that people can register to
// attend. Capacity <= 0 means the event has no overall place limit.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Capacity         int       `json:"capacity"`
	RequireLogin     bool      `json:"require_login"`
	Canceled         bool      `json:"canceled"`
	RegistrationOpen bool      `json:"registration_open"`
	StartsAt         time.Time `json:"starts_at"`
	AdminEmail       string    `json:"admin_email"`
	Tickets          []*Ticket `json:"tickets"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Unlimited reports whether the event has no overall capacity limit.
func (e *Event) Unlimited() bool {
	return e.Capacity <= 0
}

// CanRegister reports whether new registrations are accepted right now.
// Closed, canceled, and already-started events cannot be registered for.
// Capacity is a separate question answered by the CapacityLedger.
func (e *Event) CanRegister(now time.Time) bool {
	if e.Canceled || !e.RegistrationOpen {
		return false
	}
	if !e.StartsAt.IsZero() && !now.Before(e.StartsAt) {
		return false
	}
	return true
}

// TicketByID returns the ticket definition with the given ID, or nil.
func (e *Event) TicketByID(id string) *Ticket {
	for _, t := range e.Tickets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Ticket is a purchasable category of place with its own price and an
// optional sub-limit. Price is in cents. Limit <= 0 means no sub-limit.
// swagger:model Ticket
type Ticket struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Price   int64  `json:"price"`
	Limit   int    `json:"limit"`
}

// TicketOption reports the availability of one ticket definition for the
// select step. Remaining is meaningful only when Limited is true.
type TicketOption struct {
	Ticket    *Ticket `json:"ticket"`
	Available bool    `json:"available"`
	Limited   bool    `json:"limited"`
	Remaining int     `json:"remaining"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
}
