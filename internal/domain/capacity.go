package domain

import "context"

// CapacityLedger answers how many more places can be reserved for an event
// or a specific ticket type right now. It is a plain read path over
// committed registrations, recomputed on every call rather than cached, so
// it cannot drift from storage.
//
// Ledger reads are advisory: the authoritative check happens inside
// RegistrationRepository.Reserve. See the concurrency note there.
type CapacityLedger interface {
	// Remaining returns the number of places still available for the event,
	// excluding places held by the registration with excludeID (a
	// registrant's own held places never block their own progress).
	// unlimited is true when the event defines no capacity, in which case n
	// is meaningless.
	Remaining(ctx context.Context, event *Event, excludeID string) (n int, unlimited bool, err error)

	// AvailableTickets reports, per ticket definition, whether it still has
	// room, applying the same exclusion-aware counting to per-ticket
	// sub-limits.
	AvailableTickets(ctx context.Context, event *Event, excludeID string) ([]*TicketOption, error)
}
