package domain

import "context"

// PaymentOutcome is the result of a charge attempt as reported by the
// gateway. The workflow treats the gateway as opaque beyond this.
type PaymentOutcome string

const (
	PaymentSuccess  PaymentOutcome = "success"
	PaymentFailure  PaymentOutcome = "failure"
	PaymentCanceled PaymentOutcome = "cancel"
)

// PaymentGateway charges the given amount (cents) for a registration.
// An error means the gateway could not be reached; a non-success outcome
// means it answered and declined.
type PaymentGateway interface {
	Charge(ctx context.Context, reg *Registration, amount int64) (PaymentOutcome, error)
}
