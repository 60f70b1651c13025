package domain

import "context"

// Step names, matching the path scheme {eventBase}/register/{step}. The
// empty step is ticket selection.
const (
	StepSelect   = ""
	StepAttendee = "attendee"
	StepReview   = "review"
	StepPayment  = "payment"
	StepComplete = "complete"
)

// StepKind tags a workflow step result. Guard failures are redirects to the
// correct step, never raw errors; the delivery layer translates kinds to
// whatever transport is in use.
type StepKind int

const (
	StepOK StepKind = iota
	StepRedirect
	StepNotFound
	StepForbidden
	StepError
)

// StepView is the payload of a successfully rendered step: a named view
// identifier plus structured content for the presentation layer.
type StepView struct {
	View    string `json:"view"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StepResult is the tagged outcome of one workflow operation.
type StepResult struct {
	Kind       StepKind
	View       *StepView
	RedirectTo string // step name, or a details path for completed registrations
	Message    string // reason for Forbidden / NotFound
}

// OK wraps a rendered view.
func OK(view *StepView) StepResult {
	return StepResult{Kind: StepOK, View: view}
}

// Redirect steers the visitor to another step.
func Redirect(to string) StepResult {
	return StepResult{Kind: StepRedirect, RedirectTo: to}
}

// NotFoundResult terminates the request with a not-found outcome.
func NotFoundResult(msg string) StepResult {
	return StepResult{Kind: StepNotFound, Message: msg}
}

// ForbiddenResult signals an unmet login requirement.
func ForbiddenResult(msg string) StepResult {
	return StepResult{Kind: StepForbidden, Message: msg}
}

// ErrorResult signals an unrecoverable storage or infrastructure failure,
// the only condition fatal to the request besides NotFound.
func ErrorResult(msg string) StepResult {
	return StepResult{Kind: StepError, Message: msg}
}

// Visitor identifies the caller of a workflow operation: the session key
// that scopes in-progress registrations, and the authenticated user ID when
// present (empty otherwise).
type Visitor struct {
	SessionID string
	UserID    string
}

// AttendeeForm is the input for adding or editing one attendee.
type AttendeeForm struct {
	TicketID  string `json:"ticket_id"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

// RegistrationWorkflow sequences the registration steps and is the only
// component permitted to move a registration between states.
type RegistrationWorkflow interface {
	SelectTickets(ctx context.Context, v Visitor, event *Event) StepResult
	AttendeeStep(ctx context.Context, v Visitor, event *Event, attendeeID string) StepResult
	SubmitAttendee(ctx context.Context, v Visitor, event *Event, attendeeID string, form AttendeeForm) StepResult
	DeleteAttendee(ctx context.Context, v Visitor, event *Event, attendeeID string) StepResult
	Review(ctx context.Context, v Visitor, event *Event) StepResult
	SubmitReview(ctx context.Context, v Visitor, event *Event, registrantID string) StepResult
	Payment(ctx context.Context, v Visitor, event *Event) StepResult
	SubmitPayment(ctx context.Context, v Visitor, event *Event) StepResult
	Complete(ctx context.Context, v Visitor, event *Event) StepResult
	Cancel(ctx context.Context, v Visitor, event *Event) StepResult
	Details(ctx context.Context, event *Event, registrationID, accessToken string) StepResult
}
