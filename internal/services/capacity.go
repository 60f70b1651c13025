package services

import (
	"context"
	"fmt"

	"eventregistry/internal/domain"
)

type capacityLedger struct {
	regRepo domain.RegistrationRepository
}

// NewCapacityLedger returns a CapacityLedger computing availability from
// committed registrations on every call.
func NewCapacityLedger(regRepo domain.RegistrationRepository) domain.CapacityLedger {
	return &capacityLedger{regRepo: regRepo}
}

func (l *capacityLedger) Remaining(ctx context.Context, event *domain.Event, excludeID string) (int, bool, error) {
	if event.Unlimited() {
		return 0, true, nil
	}
	committed, err := l.regRepo.SumCommittedPlaces(ctx, event.ID, "", excludeID)
	if err != nil {
		return 0, false, fmt.Errorf("sum committed places: %w", err)
	}
	n := event.Capacity - committed
	if n < 0 {
		n = 0
	}
	return n, false, nil
}

func (l *capacityLedger) AvailableTickets(ctx context.Context, event *domain.Event, excludeID string) ([]*domain.TicketOption, error) {
	overall, unlimited, err := l.Remaining(ctx, event, excludeID)
	if err != nil {
		return nil, err
	}

	options := make([]*domain.TicketOption, 0, len(event.Tickets))
	for _, t := range event.Tickets {
		opt := &domain.TicketOption{Ticket: t}
		switch {
		case t.Limit > 0:
			sold, err := l.regRepo.SumCommittedPlaces(ctx, event.ID, t.ID, excludeID)
			if err != nil {
				return nil, fmt.Errorf("sum committed places for ticket %s: %w", t.ID, err)
			}
			rem := t.Limit - sold
			if rem < 0 {
				rem = 0
			}
			// The overall event limit caps a ticket's room too.
			if !unlimited && overall < rem {
				rem = overall
			}
			opt.Limited = true
			opt.Remaining = rem
			opt.Available = rem > 0
		case !unlimited:
			opt.Limited = true
			opt.Remaining = overall
			opt.Available = overall > 0
		default:
			opt.Available = true
		}
		options = append(options, opt)
	}
	return options, nil
}
