package domain

import "testing"

func TestRegistration_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "new to reserved", from: StatusNew, to: StatusReserved},
		{name: "reserved to reviewed", from: StatusReserved, to: StatusReviewed},
		{name: "reviewed to awaiting payment", from: StatusReviewed, to: StatusAwaitingPayment},
		{name: "reviewed to valid skipping payment", from: StatusReviewed, to: StatusValid},
		{name: "awaiting payment to valid", from: StatusAwaitingPayment, to: StatusValid},
		{name: "reserved to canceled", from: StatusReserved, to: StatusCanceled},
		{name: "awaiting payment to canceled", from: StatusAwaitingPayment, to: StatusCanceled},
		{name: "same status is allowed", from: StatusReviewed, to: StatusReviewed},
		{name: "no moving backwards", from: StatusReviewed, to: StatusReserved, wantErr: true},
		{name: "valid is terminal", from: StatusValid, to: StatusCanceled, wantErr: true},
		{name: "canceled is terminal", from: StatusCanceled, to: StatusReserved, wantErr: true},
		{name: "unknown status", from: StatusReserved, to: Status("Pending"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registration{Status: tt.from}
			err := reg.Transition(tt.to)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Transition(%s -> %s) = nil, want error", tt.from, tt.to)
				}
				if reg.Status != tt.from {
					t.Errorf("status = %s, want unchanged %s", reg.Status, tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition(%s -> %s) = %v", tt.from, tt.to, err)
			}
			if reg.Status != tt.to {
				t.Errorf("status = %s, want %s", reg.Status, tt.to)
			}
		})
	}
}

func TestRegistration_Places(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		attendees int
		want      int
	}{
		{name: "new holds nothing", status: StatusNew, attendees: 2, want: 0},
		{name: "canceled holds nothing", status: StatusCanceled, attendees: 2, want: 0},
		{name: "bare reservation holds one place", status: StatusReserved, attendees: 0, want: 1},
		{name: "one place per attendee", status: StatusReserved, attendees: 3, want: 3},
		{name: "valid keeps its places", status: StatusValid, attendees: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registration{Status: tt.status}
			for i := 0; i < tt.attendees; i++ {
				reg.Attendees = append(reg.Attendees, &Attendee{})
			}
			if got := reg.Places(); got != tt.want {
				t.Errorf("Places() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegistration_Outstanding(t *testing.T) {
	reg := &Registration{
		Status: StatusReviewed,
		Attendees: []*Attendee{
			{Price: 5000},
			{Price: 2500},
		},
	}
	if got := reg.Total(); got != 7500 {
		t.Errorf("Total() = %d, want 7500", got)
	}
	if got := reg.Outstanding(); got != 7500 {
		t.Errorf("Outstanding() = %d, want 7500", got)
	}
	reg.AmountPaid = 7500
	if got := reg.Outstanding(); got != 0 {
		t.Errorf("Outstanding() = %d, want 0", got)
	}
	reg.AmountPaid = 9000 // overpaid never goes negative
	if got := reg.Outstanding(); got != 0 {
		t.Errorf("Outstanding() = %d, want 0", got)
	}
}

func TestRegistration_CanSubmit(t *testing.T) {
	paid := []*Attendee{{Price: 1000}}

	tests := []struct {
		name string
		reg  *Registration
		want bool
	}{
		{name: "reviewed and free", reg: &Registration{Status: StatusReviewed, Attendees: []*Attendee{{}}}, want: true},
		{name: "reviewed with balance", reg: &Registration{Status: StatusReviewed, Attendees: paid}, want: false},
		{name: "awaiting payment fully paid", reg: &Registration{Status: StatusAwaitingPayment, Attendees: paid, AmountPaid: 1000}, want: true},
		{name: "reserved without review", reg: &Registration{Status: StatusReserved, Attendees: []*Attendee{{}}}, want: false},
		{name: "no attendees", reg: &Registration{Status: StatusReviewed}, want: false},
		{name: "already valid", reg: &Registration{Status: StatusValid, Attendees: []*Attendee{{}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.CanSubmit(); got != tt.want {
				t.Errorf("CanSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}
