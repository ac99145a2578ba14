package submissions

import (
	"errors"
	"fmt"
)

type Status string

// Lifecycle states, in fulfillment order. Cancelled sits outside the order.
const (
	StatusSubmitted       Status = "Submitted"
	StatusReviewed        Status = "Reviewed"
	StatusPaymentPending  Status = "Payment Pending"
	StatusPaymentReceived Status = "Payment Received"
	StatusInProgress      Status = "In Progress"
	StatusCompleted       Status = "Completed"
	StatusCancelled       Status = "Cancelled"
)

// InitialStatus is set exactly once, at creation.
const InitialStatus = StatusSubmitted

var ErrIllegalTransition = errors.New("illegal status transition")

var statusOrder = map[Status]int{
	StatusSubmitted:       1,
	StatusReviewed:        2,
	StatusPaymentPending:  3,
	StatusPaymentReceived: 4,
	StatusInProgress:      5,
	StatusCompleted:       6,
}

// AllStatuses lists every status an admin may pick from.
func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusReviewed,
		StatusPaymentPending,
		StatusPaymentReceived,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
	}
}

// QuickActionStatuses are the one-click buttons of the admin console.
func QuickActionStatuses() []Status {
	return []Status{StatusSubmitted, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// CheckTransition reports whether a submission in status from may move to status to.
//
//   - same status: allowed (no-op)
//   - out of Completed or Cancelled: never
//   - into Cancelled: from any non-terminal status
//   - forward, skipping allowed: yes
//   - backward: only with override
func CheckTransition(from, to Status, override bool) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}
	if !from.Valid() {
		// legacy rows may hold garbage; let the admin repair them
		return nil
	}
	if from == to {
		return nil
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %q is terminal", ErrIllegalTransition, from)
	}
	if to == StatusCancelled {
		return nil
	}
	if statusOrder[to] < statusOrder[from] && !override {
		return fmt.Errorf("%w: %q -> %q moves backward", ErrIllegalTransition, from, to)
	}
	return nil
}

// CanTransition is CheckTransition without override, as a bool.
func CanTransition(from, to Status) bool {
	return CheckTransition(from, to, false) == nil
}

// ForwardTo returns to when it is a strict forward move from from, for
// the payment signals that propose a status without forcing it.
func ForwardTo(from, to Status) (Status, bool) {
	if from == to || to == StatusCancelled {
		return "", false
	}
	if CheckTransition(from, to, false) != nil {
		return "", false
	}
	return to, true
}
