package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventregistry/internal/domain"
)

type registrationWorkflow struct {
	logger   *slog.Logger
	ledger   domain.CapacityLedger
	session  domain.RegistrationSession
	regRepo  domain.RegistrationRepository
	gateway  domain.PaymentGateway
	notifier domain.Notifier
	hasher   domain.TokenHasher
	baseURL  string
	now      func() time.Time
}

// NewRegistrationWorkflow returns the RegistrationWorkflow service. baseURL
// is used to build the details link embedded in confirmation emails.
func NewRegistrationWorkflow(
	logger *slog.Logger,
	ledger domain.CapacityLedger,
	session domain.RegistrationSession,
	regRepo domain.RegistrationRepository,
	gateway domain.PaymentGateway,
	notifier domain.Notifier,
	hasher domain.TokenHasher,
	baseURL string,
) domain.RegistrationWorkflow {
	return &registrationWorkflow{
		logger:   logger,
		ledger:   ledger,
		session:  session,
		regRepo:  regRepo,
		gateway:  gateway,
		notifier: notifier,
		hasher:   hasher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// guard enforces the event's login requirement before any state is touched.
func (w *registrationWorkflow) guard(v domain.Visitor, event *domain.Event) *domain.StepResult {
	if event.RequireLogin && v.UserID == "" {
		res := domain.ForbiddenResult("Please log in to register for this event.")
		return &res
	}
	return nil
}

// current resolves the registration for the visitor/event pair: session
// first, then creation. When write is false a missing registration resolves
// to an in-memory New record so no capacity is consumed by browsing; when
// write is true a Reserved record is created and persisted.
func (w *registrationWorkflow) current(ctx context.Context, v domain.Visitor, event *domain.Event, write bool) (*domain.Registration, error) {
	reg, err := w.session.Get(ctx, v.SessionID, event)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if !write {
		return domain.NewRegistration(event.ID), nil
	}
	return w.session.Start(ctx, v.SessionID, event)
}

func (w *registrationWorkflow) SelectTickets(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	if !event.CanRegister(w.now()) {
		return domain.OK(&domain.StepView{
			View:    "registration_closed",
			Title:   event.Title,
			Content: "This event cannot be registered for.",
		})
	}

	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	exclude := reg.ID

	remaining, unlimited, err := w.ledger.Remaining(ctx, event, exclude)
	if err != nil {
		return w.fail(ctx, "remaining capacity", err)
	}
	if !unlimited && remaining == 0 {
		return domain.OK(&domain.StepView{
			View:    "sold_out",
			Title:   event.Title + " Is Full",
			Content: "There are no more places available at this event.",
		})
	}

	tickets, err := w.ledger.AvailableTickets(ctx, event, exclude)
	if err != nil {
		return w.fail(ctx, "available tickets", err)
	}
	data := map[string]any{"tickets": tickets}
	if reg.CanReview() {
		// In-progress registration with attendees; offer a way back.
		data["resume_step"] = domain.StepReview
	}
	return domain.OK(&domain.StepView{
		View:  "ticket_selector",
		Title: "Register For " + event.Title,
		Data:  data,
	})
}

func (w *registrationWorkflow) AttendeeStep(ctx context.Context, v domain.Visitor, event *domain.Event, attendeeID string) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}

	var editing *domain.Attendee
	if attendeeID != "" {
		if editing = reg.AttendeeByID(attendeeID); editing == nil {
			return domain.NotFoundResult("attendee not found")
		}
	}

	tickets, err := w.ledger.AvailableTickets(ctx, event, reg.ID)
	if err != nil {
		return w.fail(ctx, "available tickets", err)
	}
	back := domain.StepSelect
	if reg.CanReview() {
		back = domain.StepReview
	}
	return domain.OK(&domain.StepView{
		View:  "attendee_form",
		Title: "Register For " + event.Title,
		Data: map[string]any{
			"tickets":   tickets,
			"attendee":  editing,
			"back_step": back,
			"next_step": domain.StepReview,
		},
	})
}

func (w *registrationWorkflow) SubmitAttendee(ctx context.Context, v domain.Visitor, event *domain.Event, attendeeID string, form domain.AttendeeForm) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}

	ticket := event.TicketByID(strings.TrimSpace(form.TicketID))
	if ticket == nil {
		return domain.NotFoundResult("ticket not found")
	}
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.Surname = strings.TrimSpace(form.Surname)
	form.Email = strings.TrimSpace(strings.ToLower(form.Email))
	if form.FirstName == "" || form.Email == "" {
		return domain.Redirect(domain.StepAttendee)
	}

	// A form submission is the first write: this is where the registration
	// enters Reserved and starts counting against capacity.
	reg, err := w.current(ctx, v, event, true)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded), errors.Is(err, domain.ErrRegistrationClosed):
			return domain.Redirect(domain.StepSelect)
		}
		return w.fail(ctx, "start registration", err)
	}
	if reg.Status == domain.StatusValid {
		return domain.Redirect(domain.StepSelect)
	}

	if attendeeID != "" {
		a := reg.AttendeeByID(attendeeID)
		if a == nil {
			return domain.NotFoundResult("attendee not found")
		}
		a.TicketID = ticket.ID
		a.Price = ticket.Price
		a.FirstName = form.FirstName
		a.Surname = form.Surname
		a.Email = form.Email
	} else {
		if res := w.checkRoomForAnother(ctx, event, reg, ticket); res != nil {
			return *res
		}
		reg.Attendees = append(reg.Attendees, &domain.Attendee{
			ID:             uuid.NewString(),
			RegistrationID: reg.ID,
			TicketID:       ticket.ID,
			FirstName:      form.FirstName,
			Surname:        form.Surname,
			Email:          form.Email,
			Price:          ticket.Price,
		})
	}

	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}
	return domain.Redirect(domain.StepReview)
}

// checkRoomForAnother verifies that adding one more attendee stays within
// the event limit and the ticket sub-limit. The check is advisory: the
// registration already holds its reservation, and edits to it are owned by
// one visitor, so no cross-visitor serialization is needed here.
func (w *registrationWorkflow) checkRoomForAnother(ctx context.Context, event *domain.Event, reg *domain.Registration, ticket *domain.Ticket) *domain.StepResult {
	if !event.Unlimited() {
		remaining, _, err := w.ledger.Remaining(ctx, event, reg.ID)
		if err != nil {
			res := w.fail(ctx, "remaining capacity", err)
			return &res
		}
		if remaining < len(reg.Attendees)+1 {
			res := domain.Redirect(domain.StepSelect)
			return &res
		}
	}
	if ticket.Limit > 0 {
		sold, err := w.regRepo.SumCommittedPlaces(ctx, event.ID, ticket.ID, reg.ID)
		if err != nil {
			res := w.fail(ctx, "sum ticket places", err)
			return &res
		}
		own := 0
		for _, a := range reg.Attendees {
			if a.TicketID == ticket.ID {
				own++
			}
		}
		if sold+own+1 > ticket.Limit {
			res := domain.Redirect(domain.StepSelect)
			return &res
		}
	}
	return nil
}

func (w *registrationWorkflow) DeleteAttendee(ctx context.Context, v domain.Visitor, event *domain.Event, attendeeID string) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.Persisted() {
		return domain.Redirect(domain.StepSelect)
	}
	if !reg.RemoveAttendee(attendeeID) {
		return domain.NotFoundResult("attendee not found")
	}
	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}
	if len(reg.Attendees) == 0 {
		return domain.Redirect(domain.StepSelect)
	}
	return domain.Redirect(domain.StepReview)
}

func (w *registrationWorkflow) Review(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.CanReview() {
		return domain.Redirect(domain.StepSelect)
	}
	next := "Next Step"
	if reg.CanPay() {
		next = "Make Payment"
	}
	return domain.OK(&domain.StepView{
		View:  "review",
		Title: "Review",
		Data: map[string]any{
			"attendees":   reg.Attendees,
			"total":       reg.Total(),
			"outstanding": reg.Outstanding(),
			"next_action": next,
		},
	})
}

func (w *registrationWorkflow) SubmitReview(ctx context.Context, v domain.Visitor, event *domain.Event, registrantID string) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.CanReview() {
		return domain.Redirect(domain.StepSelect)
	}

	// The selected attendee becomes the primary contact; default to the
	// first attendee when none was picked.
	registrant := reg.AttendeeByID(registrantID)
	if registrant == nil {
		registrant = reg.Attendees[0]
	}
	reg.RegistrantName = registrant.FirstName
	reg.RegistrantSurname = registrant.Surname
	reg.RegistrantEmail = registrant.Email

	if reg.Status == domain.StatusReserved {
		if err := reg.Transition(domain.StatusReviewed); err != nil {
			return w.fail(ctx, "transition to reviewed", err)
		}
	}
	if reg.CanPay() {
		if reg.Status == domain.StatusReviewed {
			if err := reg.Transition(domain.StatusAwaitingPayment); err != nil {
				return w.fail(ctx, "transition to awaiting payment", err)
			}
		}
		if err := w.regRepo.Update(ctx, reg); err != nil {
			return w.fail(ctx, "update registration", err)
		}
		return domain.Redirect(domain.StepPayment)
	}
	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}
	return domain.Redirect(domain.StepComplete)
}

func (w *registrationWorkflow) Payment(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.Persisted() {
		return domain.Redirect(domain.StepSelect)
	}
	if !reg.CanPay() {
		return domain.Redirect(domain.StepComplete)
	}
	return domain.OK(&domain.StepView{
		View:  "payment",
		Title: "Payment",
		Data: map[string]any{
			"amount":      reg.Outstanding(),
			"success_step": domain.StepComplete,
			"cancel_step":  domain.StepPayment,
		},
	})
}

func (w *registrationWorkflow) SubmitPayment(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.Persisted() {
		return domain.Redirect(domain.StepSelect)
	}
	if !reg.CanPay() {
		return domain.Redirect(domain.StepComplete)
	}

	amount := reg.Outstanding()
	outcome, err := w.gateway.Charge(ctx, reg, amount)
	if err != nil {
		// Gateway unreachable: back to the payment step, status untouched.
		w.logger.ErrorContext(ctx, "payment gateway error", "registration", reg.ID, "err", err)
		return domain.Redirect(domain.StepPayment)
	}
	if outcome != domain.PaymentSuccess {
		return domain.Redirect(domain.StepPayment)
	}

	reg.AmountPaid += amount
	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}
	return domain.Redirect(domain.StepComplete)
}

func (w *registrationWorkflow) Complete(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	// Look at the bound record directly so a completed registration can be
	// detected: the session resolver treats terminal records as absent.
	reg, err := w.session.Bound(ctx, v.SessionID, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Redirect(domain.StepSelect)
		}
		return w.fail(ctx, "resolve registration", err)
	}
	if reg.Status == domain.StatusValid {
		// Re-invocation after completion: no side effects, just the
		// permanent details view.
		return domain.Redirect(w.detailsPath(event, reg))
	}
	if !reg.CanSubmit() {
		return domain.Redirect(domain.StepReview)
	}

	token := uuid.NewString()
	hash, err := w.hasher.Hash(token)
	if err != nil {
		return w.fail(ctx, "hash access token", err)
	}
	reg.TokenHash = hash
	if err := reg.Transition(domain.StatusValid); err != nil {
		return w.fail(ctx, "transition to valid", err)
	}
	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}

	detailsURL := w.baseURL + w.detailsPath(event, reg) + "?token=" + token
	if err := w.notifier.SendConfirmation(ctx, event, reg, detailsURL); err != nil {
		w.logger.ErrorContext(ctx, "send confirmation failed", "registration", reg.ID, "err", err)
	}
	if err := w.notifier.NotifyAdmin(ctx, event, reg); err != nil {
		w.logger.ErrorContext(ctx, "notify admin failed", "registration", reg.ID, "err", err)
	}

	w.session.End(v.SessionID, event.ID)
	return domain.Redirect(w.detailsPath(event, reg))
}

func (w *registrationWorkflow) Cancel(ctx context.Context, v domain.Visitor, event *domain.Event) domain.StepResult {
	if res := w.guard(v, event); res != nil {
		return *res
	}
	reg, err := w.current(ctx, v, event, false)
	if err != nil {
		return w.fail(ctx, "resolve registration", err)
	}
	if !reg.Persisted() {
		return domain.Redirect(domain.StepSelect)
	}
	if err := reg.Transition(domain.StatusCanceled); err != nil {
		return domain.Redirect(domain.StepSelect)
	}
	if err := w.regRepo.Update(ctx, reg); err != nil {
		return w.fail(ctx, "update registration", err)
	}
	if err := w.notifier.SendCancellation(ctx, event, reg); err != nil {
		w.logger.ErrorContext(ctx, "send cancellation failed", "registration", reg.ID, "err", err)
	}
	w.session.End(v.SessionID, event.ID)
	return domain.Redirect(domain.StepSelect)
}

func (w *registrationWorkflow) Details(ctx context.Context, event *domain.Event, registrationID, accessToken string) domain.StepResult {
	reg, err := w.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundResult("registration not found")
		}
		return w.fail(ctx, "get registration", err)
	}
	if reg.EventID != event.ID {
		return domain.NotFoundResult("registration not found")
	}
	if reg.TokenHash == "" || w.hasher.Compare(reg.TokenHash, accessToken) != nil {
		return domain.ForbiddenResult("access token required")
	}
	return domain.OK(&domain.StepView{
		View:  "registration_details",
		Title: "Registration For " + event.Title,
		Data: map[string]any{
			"registration": reg,
			"total":        reg.Total(),
		},
	})
}

func (w *registrationWorkflow) detailsPath(event *domain.Event, reg *domain.Registration) string {
	return fmt.Sprintf("/events/%s/registrations/%s", event.ID, reg.ID)
}

// fail logs an unrecoverable storage or infrastructure error and terminates
// the request.
func (w *registrationWorkflow) fail(ctx context.Context, op string, err error) domain.StepResult {
	w.logger.ErrorContext(ctx, "workflow failure", "op", op, "err", err)
	return domain.ErrorResult("request could not be completed")
}
