package submissions

import (
	"errors"
	"time"
)

var ErrAlreadyPaid = errors.New("payment already received")

// CanRequestPayment rejects a new payment link for orders that are paid,
// finished or cancelled.
func CanRequestPayment(rec Record) error {
	if PaymentStatus(rec.PaymentStatus) == PaymentPaid {
		return ErrAlreadyPaid
	}
	if Status(rec.Status).Terminal() {
		return ErrIllegalTransition
	}
	return nil
}

// LinkCreatedPatch records a fresh checkout reference and proposes
// Payment Pending when that is a forward move.
func LinkCreatedPatch(current Status, txRef string, amount int64) Patch {
	pending := PaymentPending
	p := Patch{
		PaymentStatus: &pending,
		PaymentTxRef:  &txRef,
		PaymentAmount: &amount,
	}
	if next, ok := ForwardTo(current, StatusPaymentPending); ok {
		p.Status = &next
	}
	return p
}

// PaidPatch marks the payment as received and proposes Payment Received.
func PaidPatch(current Status, amount int64, at time.Time) Patch {
	paid := PaymentPaid
	p := Patch{
		PaymentStatus: &paid,
		PaidAt:        &at,
	}
	if amount > 0 {
		p.PaymentAmount = &amount
	}
	if next, ok := ForwardTo(current, StatusPaymentReceived); ok {
		p.Status = &next
	}
	return p
}

func FailedPatch() Patch {
	failed := PaymentFailed
	return Patch{PaymentStatus: &failed}
}
