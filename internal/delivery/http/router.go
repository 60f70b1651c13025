// Package http wires the registration workflow to its HTTP routes.
package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistry/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes. Step
// URLs follow {eventBase}/register/{step}; the omitted step is ticket
// selection.
func NewRouter(registerController *controllers.RegisterController, eventController *controllers.EventController) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("GET /e/{slug}", eventController.GetEventBySlug)
	mux.HandleFunc("GET /events/{eventID}/registrations/{registrationID}", registerController.Details)

	// Registration workflow steps
	mux.HandleFunc("GET /events/{eventID}/register", registerController.SelectTickets)
	mux.HandleFunc("GET /events/{eventID}/register/attendee", registerController.AttendeeStep)
	mux.HandleFunc("POST /events/{eventID}/register/attendee", registerController.SubmitAttendee)
	mux.HandleFunc("GET /events/{eventID}/register/attendee/edit/{attendeeID}", registerController.AttendeeStep)
	mux.HandleFunc("POST /events/{eventID}/register/attendee/edit/{attendeeID}", registerController.SubmitAttendee)
	mux.HandleFunc("POST /events/{eventID}/register/attendee/delete/{attendeeID}", registerController.DeleteAttendee)
	mux.HandleFunc("GET /events/{eventID}/register/review", registerController.Review)
	mux.HandleFunc("POST /events/{eventID}/register/review", registerController.SubmitReview)
	mux.HandleFunc("GET /events/{eventID}/register/payment", registerController.Payment)
	mux.HandleFunc("POST /events/{eventID}/register/payment", registerController.SubmitPayment)
	mux.HandleFunc("GET /events/{eventID}/register/complete", registerController.Complete)
	mux.HandleFunc("POST /events/{eventID}/register/cancel", registerController.Cancel)

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
