package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
)

// RegisterController exposes the registration workflow steps over HTTP. It
// resolves the event and visitor identity, delegates to the workflow, and
// translates tagged step results to HTTP outcomes.
type RegisterController struct {
	Logger   *slog.Logger
	Events   domain.EventRepository
	Workflow domain.RegistrationWorkflow
}

func NewRegisterController(logger *slog.Logger, events domain.EventRepository, workflow domain.RegistrationWorkflow) *RegisterController {
	return &RegisterController{
		Logger:   logger,
		Events:   events,
		Workflow: workflow,
	}
}

// event resolves the event referenced by the request path, writing a 404
// when it does not exist. Returns nil when the request has been handled.
func (c *RegisterController) event(w http.ResponseWriter, r *http.Request) *domain.Event {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return nil
	}
	event, err := c.Events.GetByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return nil
		}
		c.Logger.ErrorContext(r.Context(), "get event failed", "event", eventID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return nil
	}
	return event
}

func (c *RegisterController) visitor(r *http.Request) domain.Visitor {
	v := domain.Visitor{}
	if id, ok := middleware.VisitorIDFromContext(r.Context()); ok {
		v.SessionID = id
	}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		v.UserID = id
	}
	return v
}

// registerPath builds the URL of a workflow step for an event.
func registerPath(eventID, step string) string {
	base := "/events/" + eventID + "/register"
	if step == domain.StepSelect {
		return base
	}
	return base + "/" + step
}

// writeStep translates a workflow step result to an HTTP response. Redirects
// use 303 with a Location header and echo the target in the body so JSON
// clients need not follow the header.
func (c *RegisterController) writeStep(w http.ResponseWriter, event *domain.Event, res domain.StepResult) {
	switch res.Kind {
	case domain.StepOK:
		helpers.WriteJSONSuccess(w, http.StatusOK, res.View)
	case domain.StepRedirect:
		loc := res.RedirectTo
		if !strings.HasPrefix(loc, "/") {
			loc = registerPath(event.ID, loc)
		}
		w.Header().Set("Location", loc)
		helpers.WriteJSONSuccess(w, http.StatusSeeOther, map[string]string{"redirect_to": loc})
	case domain.StepNotFound:
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, res.Message)
	case domain.StepForbidden:
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, res.Message)
	default:
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, res.Message)
	}
}

// SelectTickets godoc
// @Summary Ticket selection step
// @Description Lists available tickets for the event, or a sold-out/closed view. Entry point of the registration workflow.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/register [get]
func (c *RegisterController) SelectTickets(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.SelectTickets(r.Context(), c.visitor(r), event))
}

// AttendeeStep godoc
// @Summary Attendee form step
// @Description Renders the add-attendee form, or the edit form when an attendee ID is in the path.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/register/attendee [get]
func (c *RegisterController) AttendeeStep(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.AttendeeStep(r.Context(), c.visitor(r), event, r.PathValue("attendeeID")))
}

// SubmitAttendeeRequest is the request body for the attendee submit step.
type SubmitAttendeeRequest struct {
	TicketID  string `json:"ticket_id"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

// Validate implements helpers.Validator.
func (r *SubmitAttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.TicketID) == "" {
		errs = append(errs, "ticket_id is required")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !strings.Contains(email, "@") {
		errs = append(errs, "email is not a valid email address")
	}
	return errs
}

// SubmitAttendee godoc
// @Summary Submit attendee details
// @Description Adds an attendee (or updates one when an attendee ID is in the path). The first write reserves a place against the event capacity.
// @Tags register
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body controllers.SubmitAttendeeRequest true "Attendee details"
// @Success 303 {object} helpers.APIResponse "redirect to the review step"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/register/attendee [post]
func (c *RegisterController) SubmitAttendee(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	var req SubmitAttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	form := domain.AttendeeForm{
		TicketID:  req.TicketID,
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
	}
	c.writeStep(w, event, c.Workflow.SubmitAttendee(r.Context(), c.visitor(r), event, r.PathValue("attendeeID"), form))
}

// DeleteAttendee godoc
// @Summary Remove an attendee
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Param attendeeID path string true "Attendee ID"
// @Success 303 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/register/attendee/delete/{attendeeID} [post]
func (c *RegisterController) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.DeleteAttendee(r.Context(), c.visitor(r), event, r.PathValue("attendeeID")))
}

// Review godoc
// @Summary Review step
// @Description Renders the attendee list and registrant picker. Redirects to ticket selection when no attendees exist yet.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/register/review [get]
func (c *RegisterController) Review(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.Review(r.Context(), c.visitor(r), event))
}

// SubmitReviewRequest is the request body for the review submit step.
type SubmitReviewRequest struct {
	RegistrantID string `json:"registrant_id"`
}

// SubmitReview godoc
// @Summary Submit the review step
// @Description Designates the primary contact and moves on to payment or completion depending on the outstanding balance.
// @Tags register
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body controllers.SubmitReviewRequest true "Registrant selection"
// @Success 303 {object} helpers.APIResponse
// @Router /events/{eventID}/register/review [post]
func (c *RegisterController) SubmitReview(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	var req SubmitReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.writeStep(w, event, c.Workflow.SubmitReview(r.Context(), c.visitor(r), event, req.RegistrantID))
}

// Payment godoc
// @Summary Payment step
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/register/payment [get]
func (c *RegisterController) Payment(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.Payment(r.Context(), c.visitor(r), event))
}

// SubmitPayment godoc
// @Summary Charge the outstanding balance
// @Description Delegates to the payment gateway; success proceeds to completion, failure or cancellation returns to the payment step.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 303 {object} helpers.APIResponse
// @Router /events/{eventID}/register/payment [post]
func (c *RegisterController) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.SubmitPayment(r.Context(), c.visitor(r), event))
}

// Complete godoc
// @Summary Complete the registration
// @Description Marks the registration Valid, sends notifications, ends the session binding, and redirects to the permanent details view. Idempotent.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 303 {object} helpers.APIResponse
// @Router /events/{eventID}/register/complete [get]
func (c *RegisterController) Complete(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.Complete(r.Context(), c.visitor(r), event))
}

// Cancel godoc
// @Summary Cancel the in-progress registration
// @Description Marks the registration Canceled, releasing its places.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 303 {object} helpers.APIResponse
// @Router /events/{eventID}/register/cancel [post]
func (c *RegisterController) Cancel(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	c.writeStep(w, event, c.Workflow.Cancel(r.Context(), c.visitor(r), event))
}

// Details godoc
// @Summary Permanent registration details view
// @Description Shows a completed registration. Requires the access token from the confirmation email.
// @Tags register
// @Produce json
// @Param eventID path string true "Event ID"
// @Param registrationID path string true "Registration ID"
// @Param token query string true "Access token"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registrations/{registrationID} [get]
func (c *RegisterController) Details(w http.ResponseWriter, r *http.Request) {
	event := c.event(w, r)
	if event == nil {
		return
	}
	regID := r.PathValue("registrationID")
	token := r.URL.Query().Get("token")
	c.writeStep(w, event, c.Workflow.Details(r.Context(), event, regID, token))
}
