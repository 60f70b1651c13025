// Package memory provides in-memory repository implementations used by the
// development storage mode and by tests. They honor the same contracts as
// the postgres implementations, including the atomicity of Reserve.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventregistry/internal/domain"
)

// RegistrationRepository is a mutex-guarded in-memory registration store.
// The mutex held across the count-then-insert in Reserve is what serializes
// concurrent reservation attempts.
type RegistrationRepository struct {
	mu   sync.Mutex
	regs map[string]*domain.Registration
}

func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{regs: make(map[string]*domain.Registration)}
}

func (r *RegistrationRepository) Reserve(ctx context.Context, event *domain.Event) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !event.Unlimited() {
		committed := r.sumLocked(event.ID, "", "")
		if committed+1 > event.Capacity {
			return nil, domain.ErrCapacityExceeded
		}
	}

	now := time.Now()
	reg := &domain.Registration{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		Status:    domain.StatusReserved,
		Attendees: []*domain.Attendee{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.regs[reg.ID] = clone(reg)
	return reg, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(reg), nil
}

func (r *RegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[reg.ID]; !ok {
		return domain.ErrNotFound
	}
	reg.UpdatedAt = time.Now()
	r.regs[reg.ID] = clone(reg)
	return nil
}

func (r *RegistrationRepository) SumCommittedPlaces(ctx context.Context, eventID, ticketID, excludeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sumLocked(eventID, ticketID, excludeID), nil
}

func (r *RegistrationRepository) sumLocked(eventID, ticketID, excludeID string) int {
	total := 0
	for _, reg := range r.regs {
		if reg.EventID != eventID || reg.ID == excludeID {
			continue
		}
		if !reg.Status.CountsAgainstCapacity() {
			continue
		}
		if ticketID == "" {
			total += reg.Places()
			continue
		}
		for _, a := range reg.Attendees {
			if a.TicketID == ticketID {
				total++
			}
		}
	}
	return total
}

func clone(reg *domain.Registration) *domain.Registration {
	c := *reg
	c.Attendees = make([]*domain.Attendee, len(reg.Attendees))
	for i, a := range reg.Attendees {
		ac := *a
		c.Attendees[i] = &ac
	}
	return &c
}
