package email

import (
	"strings"
	"testing"

	"eventregistry/internal/domain"
)

func TestTemplateRenderer_Render(t *testing.T) {
	renderer := NewTemplateRenderer()

	t.Run("confirmation", func(t *testing.T) {
		data := &domain.ConfirmationEmailData{
			EventTitle:     "GopherConf",
			RegistrantName: "Ann",
			Email:          "ann@example.com",
			Attendees:      2,
			Total:          12550,
			DetailsURL:     "http://tickets.example.com/events/ev-1/registrations/reg-1?token=abc",
		}
		subject, htmlBody, textBody, err := renderer.Render("confirmation", data)
		if err != nil {
			t.Fatal(err)
		}
		if subject != "Your registration for GopherConf" {
			t.Errorf("subject = %q", subject)
		}
		if !strings.Contains(textBody, "$125.50") {
			t.Errorf("text body missing formatted total:\n%s", textBody)
		}
		if !strings.Contains(textBody, data.DetailsURL) {
			t.Errorf("text body missing details URL:\n%s", textBody)
		}
		if !strings.Contains(htmlBody, "GopherConf") {
			t.Errorf("html body missing event title:\n%s", htmlBody)
		}
	})

	t.Run("all templates render", func(t *testing.T) {
		confirmation := &domain.ConfirmationEmailData{EventTitle: "GopherConf", RegistrantName: "Ann"}
		cancellation := &domain.CancellationEmailData{EventTitle: "GopherConf", RegistrantName: "Ann"}

		for name, data := range map[string]any{
			"confirmation": confirmation,
			"admin_notice": confirmation,
			"cancellation": cancellation,
		} {
			subject, htmlBody, textBody, err := renderer.Render(name, data)
			if err != nil {
				t.Fatalf("Render(%s): %v", name, err)
			}
			if subject == "" || htmlBody == "" || textBody == "" {
				t.Errorf("Render(%s) produced an empty part", name)
			}
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		if _, _, _, err := renderer.Render("welcome", nil); err == nil {
			t.Fatal("err = nil, want error")
		}
	})
}
