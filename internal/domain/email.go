package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ConfirmationEmailData holds data for the registration confirmation email
// and the administrator notification.
type ConfirmationEmailData struct {
	EventTitle     string
	RegistrantName string
	Email          string
	Attendees      int
	Total          int64
	DetailsURL     string
}

// CancellationEmailData holds data for the un-registration email.
type CancellationEmailData struct {
	EventTitle     string
	RegistrantName string
	Email          string
}

// Notifier sends registration lifecycle emails. Calls are fire-and-forget
// from the workflow's perspective: failures are logged, not propagated to
// the visitor.
type Notifier interface {
	SendConfirmation(ctx context.Context, event *Event, reg *Registration, detailsURL string) error
	NotifyAdmin(ctx context.Context, event *Event, reg *Registration) error
	SendCancellation(ctx context.Context, event *Event, reg *Registration) error
}
