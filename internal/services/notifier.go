package services

import (
	"context"
	"fmt"
	"log"

	"eventregistry/internal/domain"
)

type notifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotifier returns a Notifier that renders named templates and sends
// them through the given Mailer.
func NewNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.Notifier {
	return &notifier{mailer: mailer, renderer: renderer}
}

// SendConfirmation emails the registrant their registration details using
// the "confirmation" template.
func (n *notifier) SendConfirmation(ctx context.Context, event *domain.Event, reg *domain.Registration, detailsURL string) error {
	if reg.RegistrantEmail == "" {
		return fmt.Errorf("registration %s has no registrant email", reg.ID)
	}
	data := &domain.ConfirmationEmailData{
		EventTitle:     event.Title,
		RegistrantName: reg.RegistrantName,
		Email:          reg.RegistrantEmail,
		Attendees:      len(reg.Attendees),
		Total:          reg.Total(),
		DetailsURL:     detailsURL,
	}
	subject, htmlBody, textBody, err := n.renderer.Render("confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render confirmation template: %w", err)
	}
	if err := n.mailer.Send(reg.RegistrantEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", reg.RegistrantEmail)
	return nil
}

// NotifyAdmin emails the event administrator about a completed registration
// using the "admin_notice" template.
func (n *notifier) NotifyAdmin(ctx context.Context, event *domain.Event, reg *domain.Registration) error {
	if event.AdminEmail == "" {
		// Nothing to do when the event has no administrator address.
		return nil
	}
	data := &domain.ConfirmationEmailData{
		EventTitle:     event.Title,
		RegistrantName: reg.RegistrantName,
		Email:          reg.RegistrantEmail,
		Attendees:      len(reg.Attendees),
		Total:          reg.Total(),
	}
	subject, htmlBody, textBody, err := n.renderer.Render("admin_notice", data)
	if err != nil {
		return fmt.Errorf("failed to render admin_notice template: %w", err)
	}
	if err := n.mailer.Send(event.AdminEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send admin notice: %w", err)
	}
	log.Printf("[EMAIL] Admin notice sent to %s", event.AdminEmail)
	return nil
}

// SendCancellation emails the registrant that their registration was
// canceled using the "cancellation" template. Registrations canceled before
// a registrant was designated have nowhere to send to and are skipped.
func (n *notifier) SendCancellation(ctx context.Context, event *domain.Event, reg *domain.Registration) error {
	if reg.RegistrantEmail == "" {
		return nil
	}
	data := &domain.CancellationEmailData{
		EventTitle:     event.Title,
		RegistrantName: reg.RegistrantName,
		Email:          reg.RegistrantEmail,
	}
	subject, htmlBody, textBody, err := n.renderer.Render("cancellation", data)
	if err != nil {
		return fmt.Errorf("failed to render cancellation template: %w", err)
	}
	if err := n.mailer.Send(reg.RegistrantEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send cancellation email: %w", err)
	}
	log.Printf("[EMAIL] Cancellation notice sent to %s", reg.RegistrantEmail)
	return nil
}
