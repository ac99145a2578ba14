package submissions

import "time"

type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepUpcoming  StepState = "upcoming"
)

type TrackingStep struct {
	Status Status    `json:"status"`
	Label  string    `json:"label"`
	State  StepState `json:"state"`
}

// customer-facing steps; Cancelled is reported separately
var trackingSteps = []struct {
	status Status
	label  string
}{
	{StatusSubmitted, "Submitted"},
	{StatusReviewed, "Under Review"},
	{StatusPaymentPending, "Payment Pending"},
	{StatusPaymentReceived, "Payment Received"},
	{StatusInProgress, "In Progress"},
	{StatusCompleted, "Completed"},
}

// Tracking is the reduced public view returned by order lookup.
type Tracking struct {
	OrderID      string         `json:"order_id"`
	BusinessName string         `json:"business_name"`
	PackageID    string         `json:"package"`
	Status       Status         `json:"status"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	Cancelled    bool           `json:"cancelled"`
	Steps        []TrackingStep `json:"steps"`
}

func TrackingSteps(current Status) []TrackingStep {
	currentIdx := -1
	for i, st := range trackingSteps {
		if st.status == current {
			currentIdx = i
		}
	}

	out := make([]TrackingStep, len(trackingSteps))
	for i, st := range trackingSteps {
		state := StepUpcoming
		switch {
		case current == StatusCompleted && i <= currentIdx:
			state = StepCompleted
		case currentIdx >= 0 && i < currentIdx:
			state = StepCompleted
		case i == currentIdx:
			state = StepCurrent
		}
		out[i] = TrackingStep{Status: st.status, Label: st.label, State: state}
	}
	return out
}

func NewTracking(s Submission) Tracking {
	return Tracking{
		OrderID:      s.ID,
		BusinessName: s.BusinessName,
		PackageID:    s.PackageID,
		Status:       s.Status,
		SubmittedAt:  s.SubmittedAt,
		Cancelled:    s.Status == StatusCancelled,
		Steps:        TrackingSteps(s.Status),
	}
}
