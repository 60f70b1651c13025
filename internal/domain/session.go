package domain

import "context"

// RegistrationSessionStore holds the process-wide association between a
// visitor's session and their registration for an event. A visitor can hold
// independent in-progress registrations for different events, but never two
// for the same event.
//
// End marks a binding ended rather than deleting it: an ended binding no
// longer names an active registration (Get misses), but Peek still resolves
// it so a completed registration can keep redirecting to its details view.
type RegistrationSessionStore interface {
	Get(visitorID, eventID string) (registrationID string, ok bool)
	Peek(visitorID, eventID string) (registrationID string, ok bool)
	Bind(visitorID, eventID, registrationID string)
	End(visitorID, eventID string)
}

// RegistrationSession resolves the registration bound to a visitor/event
// pair and is the only path that creates new reserved registrations.
type RegistrationSession interface {
	// Get returns the bound registration if it exists and is not terminal;
	// ErrNotFound otherwise. Get never consumes capacity.
	Get(ctx context.Context, visitorID string, event *Event) (*Registration, error)

	// Bound returns whatever registration the session last bound for the
	// event, terminal or not. Used by the completion step so re-invocation
	// after success can still find the completed record.
	Bound(ctx context.Context, visitorID string, event *Event) (*Registration, error)

	// Start atomically checks capacity, creates and persists a new Reserved
	// registration, binds it to the session, and returns it. Fails with
	// ErrCapacityExceeded when no room remains at commit time and
	// ErrRegistrationClosed when the event cannot be registered for.
	Start(ctx context.Context, visitorID string, event *Event) (*Registration, error)

	// End unbinds the registration from the session without altering its
	// persisted status.
	End(visitorID, eventID string)
}
