package services

import (
	"context"
	"errors"
	"testing"

	"eventregistry/internal/domain"
)

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
}

func (m *fakeMailer) Send(to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject:" + templateName, "<p>body</p>", "body", nil
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "ev-1", Title: "GopherConf", AdminEmail: "admin@example.com"}
	reg := &domain.Registration{
		ID:              "reg-1",
		EventID:         "ev-1",
		Status:          domain.StatusValid,
		RegistrantName:  "Ann",
		RegistrantEmail: "ann@example.com",
	}

	t.Run("confirmation goes to the registrant", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewNotifier(mailer, &fakeRenderer{})
		if err := n.SendConfirmation(ctx, event, reg, "http://x/details"); err != nil {
			t.Fatal(err)
		}
		if len(mailer.sent) != 1 || mailer.sent[0].to != "ann@example.com" {
			t.Fatalf("sent = %+v, want one mail to the registrant", mailer.sent)
		}
		if mailer.sent[0].subject != "subject:confirmation" {
			t.Errorf("subject = %q", mailer.sent[0].subject)
		}
	})

	t.Run("confirmation without a registrant email fails", func(t *testing.T) {
		n := NewNotifier(&fakeMailer{}, &fakeRenderer{})
		anon := &domain.Registration{ID: "reg-2", EventID: "ev-1"}
		if err := n.SendConfirmation(ctx, event, anon, "http://x"); err == nil {
			t.Fatal("err = nil, want error")
		}
	})

	t.Run("admin notice skipped without an admin address", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewNotifier(mailer, &fakeRenderer{})
		plain := &domain.Event{ID: "ev-2", Title: "Meetup"}
		if err := n.NotifyAdmin(ctx, plain, reg); err != nil {
			t.Fatal(err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("sent = %+v, want none", mailer.sent)
		}
	})

	t.Run("cancellation skipped without a registrant email", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewNotifier(mailer, &fakeRenderer{})
		anon := &domain.Registration{ID: "reg-2", EventID: "ev-1"}
		if err := n.SendCancellation(ctx, event, anon); err != nil {
			t.Fatal(err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("sent = %+v, want none", mailer.sent)
		}
	})

	t.Run("render failure is propagated", func(t *testing.T) {
		n := NewNotifier(&fakeMailer{}, &fakeRenderer{err: errors.New("bad template")})
		if err := n.SendConfirmation(ctx, event, reg, "http://x"); err == nil {
			t.Fatal("err = nil, want error")
		}
	})

	t.Run("mailer failure is propagated", func(t *testing.T) {
		n := NewNotifier(&fakeMailer{err: errors.New("ses down")}, &fakeRenderer{})
		if err := n.NotifyAdmin(ctx, event, reg); err == nil {
			t.Fatal("err = nil, want error")
		}
	})
}
