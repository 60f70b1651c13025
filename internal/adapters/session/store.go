// Package session holds the in-process binding between visitor sessions and
// their registrations.
package session

import (
	"sync"

	"eventregistry/internal/domain"
)

type key struct {
	visitorID string
	eventID   string
}

type binding struct {
	registrationID string
	ended          bool
}

// Store is a process-wide map from (visitor session, event) to registration
// ID. Ended bindings keep the registration ID so the completion step can
// keep resolving it; Bind overwrites them when a new flow starts.
type Store struct {
	mu       sync.RWMutex
	bindings map[key]binding
}

func NewStore() *Store {
	return &Store{bindings: make(map[key]binding)}
}

func (s *Store) Get(visitorID, eventID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[key{visitorID, eventID}]
	if !ok || b.ended {
		return "", false
	}
	return b.registrationID, true
}

func (s *Store) Peek(visitorID, eventID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[key{visitorID, eventID}]
	if !ok {
		return "", false
	}
	return b.registrationID, true
}

func (s *Store) Bind(visitorID, eventID, registrationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[key{visitorID, eventID}] = binding{registrationID: registrationID}
}

func (s *Store) End(visitorID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{visitorID, eventID}
	if b, ok := s.bindings[k]; ok {
		b.ended = true
		s.bindings[k] = b
	}
}

var _ domain.RegistrationSessionStore = (*Store)(nil)
