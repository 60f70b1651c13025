package domain

import (
	"context"
	"time"
)

// Status is the lifecycle state of a registration. Transitions only move
// forward; Canceled is reachable from any non-terminal state and nothing
// follows a terminal state.
type Status string

const (
	StatusNew             Status = "New"
	StatusReserved        Status = "Reserved"
	StatusReviewed        Status = "Reviewed"
	StatusAwaitingPayment Status = "AwaitingPayment"
	StatusValid           Status = "Valid"
	StatusCanceled        Status = "Canceled"
)

var statusRank = map[Status]int{
	StatusNew:             0,
	StatusReserved:        1,
	StatusReviewed:        2,
	StatusAwaitingPayment: 3,
	StatusValid:           4,
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusValid || s == StatusCanceled
}

// CountsAgainstCapacity reports whether a registration in this status holds
// places. Anything persisted and not canceled holds its places until it is
// explicitly canceled, even if the visitor never returns.
func (s Status) CountsAgainstCapacity() bool {
	switch s {
	case StatusReserved, StatusReviewed, StatusAwaitingPayment, StatusValid:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	if s == StatusCanceled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Attendee is a named person occupying one place. Price is the ticket price
// snapshotted at the time the attendee was added, in cents.
// swagger:model Attendee
type Attendee struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`
	TicketID       string `json:"ticket_id"`
	FirstName      string `json:"first_name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Price          int64  `json:"price"`
}

// Registration is one registrant's reservation of places at an event.
// swagger:model Registration
type Registration struct {
	ID               string      `json:"id"`
	EventID          string      `json:"event_id"`
	Status           Status      `json:"status"`
	Attendees        []*Attendee `json:"attendees"`
	RegistrantName   string      `json:"registrant_name"`
	RegistrantSurname string     `json:"registrant_surname"`
	RegistrantEmail  string      `json:"registrant_email"`
	AmountPaid       int64       `json:"amount_paid"`
	TokenHash        string      `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewRegistration returns an in-memory registration in status New. It holds
// no places and is never persisted in this state; it exists so the attendee
// form can render before anything is written.
func NewRegistration(eventID string) *Registration {
	return &Registration{
		EventID:   eventID,
		Status:    StatusNew,
		Attendees: []*Attendee{},
	}
}

// Total is the sum of each attendee's ticket price, in cents.
func (r *Registration) Total() int64 {
	var total int64
	for _, a := range r.Attendees {
		total += a.Price
	}
	return total
}

// Outstanding is the unpaid part of the total, never negative.
func (r *Registration) Outstanding() int64 {
	if out := r.Total() - r.AmountPaid; out > 0 {
		return out
	}
	return 0
}

// Places is the number of places this registration holds against capacity.
// A reserved registration with no attendees yet still holds one place so
// that starting the flow is what consumes the last ticket, not finishing it.
func (r *Registration) Places() int {
	if !r.Status.CountsAgainstCapacity() {
		return 0
	}
	if n := len(r.Attendees); n > 0 {
		return n
	}
	return 1
}

// Persisted reports whether the registration has been written to storage.
func (r *Registration) Persisted() bool {
	return r.ID != ""
}

// CanReview reports whether the review step may render: at least one
// attendee must exist on a non-terminal registration.
func (r *Registration) CanReview() bool {
	return !r.Status.Terminal() && len(r.Attendees) > 0
}

// CanPay reports whether the registration can still incur payment.
func (r *Registration) CanPay() bool {
	return !r.Status.Terminal() && r.Outstanding() > 0
}

// CanSubmit reports whether the registration may complete: reviewed or
// awaiting payment, with nothing left to pay.
func (r *Registration) CanSubmit() bool {
	if r.Status != StatusReviewed && r.Status != StatusAwaitingPayment {
		return false
	}
	return len(r.Attendees) > 0 && r.Outstanding() == 0
}

// AttendeeByID returns the attendee with the given ID, or nil.
func (r *Registration) AttendeeByID(id string) *Attendee {
	for _, a := range r.Attendees {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// RemoveAttendee deletes the attendee with the given ID. It returns false
// when no such attendee exists.
func (r *Registration) RemoveAttendee(id string) bool {
	for i, a := range r.Attendees {
		if a.ID == id {
			r.Attendees = append(r.Attendees[:i], r.Attendees[i+1:]...)
			return true
		}
	}
	return false
}

// Transition moves the registration to the given status, enforcing the
// forward-only lifecycle. Canceled is allowed from any non-terminal state.
func (r *Registration) Transition(to Status) error {
	if !to.Valid() {
		return ErrInvalidTransition
	}
	if r.Status.Terminal() {
		return ErrInvalidTransition
	}
	if to == StatusCanceled {
		r.Status = to
		return nil
	}
	if statusRank[to] < statusRank[r.Status] {
		return ErrInvalidTransition
	}
	r.Status = to
	return nil
}

// RegistrationRepository defines storage operations for registrations.
//
// Reserve is the one atomic check-then-create unit: it must recount
// committed places for the event inside its own serialized scope (a
// transaction with a row lock, or a mutex) and create a Reserved
// registration only if a place remains, returning ErrCapacityExceeded
// otherwise. A capacity value read outside Reserve must never be trusted
// for the write decision.
type RegistrationRepository interface {
	Reserve(ctx context.Context, event *Event) (*Registration, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
	Update(ctx context.Context, reg *Registration) error
	// SumCommittedPlaces counts places held by registrations for the event
	// whose status counts against capacity, excluding the registration with
	// excludeID when non-empty. TicketID narrows the count to one ticket
	// type when non-empty.
	SumCommittedPlaces(ctx context.Context, eventID, ticketID, excludeID string) (int, error)
}
