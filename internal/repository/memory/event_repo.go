package memory

import (
	"context"
	"sync"

	"eventregistry/internal/domain"
)

// EventRepository is an in-memory event store. Events are seeded with Put;
// the workflow treats them as immutable during a run.
type EventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]*domain.Event)}
}

// Put stores or replaces an event.
func (r *EventRepository) Put(event *domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ev := range r.events {
		if ev.Slug == slug {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}
