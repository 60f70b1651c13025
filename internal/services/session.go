package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventregistry/internal/domain"
)

type registrationSession struct {
	store   domain.RegistrationSessionStore
	regRepo domain.RegistrationRepository
	now     func() time.Time
}

// NewRegistrationSession returns the RegistrationSession service backed by
// the given session store and registration repository.
func NewRegistrationSession(store domain.RegistrationSessionStore, regRepo domain.RegistrationRepository) domain.RegistrationSession {
	return &registrationSession{
		store:   store,
		regRepo: regRepo,
		now:     time.Now,
	}
}

func (s *registrationSession) Get(ctx context.Context, visitorID string, event *domain.Event) (*domain.Registration, error) {
	id, ok := s.store.Get(visitorID, event.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Stale binding; the record is gone.
			s.store.End(visitorID, event.ID)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != event.ID {
		s.store.End(visitorID, event.ID)
		return nil, domain.ErrNotFound
	}
	if reg.Status.Terminal() {
		// Not active, but the binding stays peekable for the details
		// redirect after completion.
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (s *registrationSession) Bound(ctx context.Context, visitorID string, event *domain.Event) (*domain.Registration, error) {
	id, ok := s.store.Peek(visitorID, event.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != event.ID {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (s *registrationSession) Start(ctx context.Context, visitorID string, event *domain.Event) (*domain.Registration, error) {
	if !event.CanRegister(s.now()) {
		return nil, domain.ErrRegistrationClosed
	}
	// Reserve is the serialized check-then-create unit; capacity is decided
	// in there, not here.
	reg, err := s.regRepo.Reserve(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			return nil, domain.ErrCapacityExceeded
		}
		return nil, fmt.Errorf("reserve registration: %w", err)
	}
	s.store.Bind(visitorID, event.ID, reg.ID)
	return reg, nil
}

func (s *registrationSession) End(visitorID, eventID string) {
	s.store.End(visitorID, eventID)
}
