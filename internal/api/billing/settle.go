package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	submissionsapi "auraweb-intake/internal/api/submissions"
	"auraweb-intake/internal/domain/billing"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/infra/events"
	"auraweb-intake/internal/infra/metrics"
	"auraweb-intake/internal/infra/stripe"

	"gorm.io/gorm"
)

// Outcome is what Settle did with a gateway verification.
type Outcome struct {
	Submission submissions.Submission
	Status     submissions.PaymentStatus
	Changed    bool
}

// Settle records a verified checkout outcome on the submission and the
// payment ledger. eventID, when set, makes webhook redeliveries no-ops.
//
// A failure for a reference that is no longer the submission's current one
// only updates the ledger: a newer link may still be paid. Paid and refunded
// submissions are never moved back by a late outcome.
func Settle(ctx context.Context, db *gorm.DB, v stripe.Verification, eventID *string, source string) (Outcome, error) {
	rec, err := findSubmission(db, v)
	if err != nil {
		return Outcome{}, err
	}

	var attempt billing.Payment
	hasAttempt := true
	if err := db.Where("tx_ref = ?", v.TxRef).First(&attempt).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Outcome{}, fmt.Errorf("load payment attempt %s: %w", v.TxRef, err)
		}
		hasAttempt = false
	}
	if eventID != nil && hasAttempt && attempt.StripeEventID != nil && *attempt.StripeEventID == *eventID {
		return Outcome{Submission: rec.ToSubmission(), Status: v.Status}, nil
	}

	out := Outcome{Submission: rec.ToSubmission(), Status: v.Status}
	current := submissions.PaymentStatus(rec.PaymentStatus)
	isCurrentRef := rec.PaymentTxRef == nil || *rec.PaymentTxRef == v.TxRef

	var patch *submissions.Patch
	switch v.Status {
	case submissions.PaymentPaid:
		if current == submissions.PaymentPending || current == submissions.PaymentFailed {
			p := submissions.PaidPatch(submissions.Status(rec.Status), v.AmountETB, time.Now())
			if !isCurrentRef {
				p.PaymentTxRef = &v.TxRef
			}
			patch = &p
		}
	case submissions.PaymentFailed:
		if current == submissions.PaymentPending && isCurrentRef {
			p := submissions.FailedPatch()
			patch = &p
		}
	}

	if patch != nil {
		change, err := submissionsapi.Commit(ctx, db, rec.ID, *patch)
		if err != nil {
			return Outcome{}, err
		}
		out.Submission = change.After
		out.Changed = true
	}

	if hasAttempt {
		updates := map[string]interface{}{"status": string(v.Status)}
		if eventID != nil {
			updates["stripe_event_id"] = *eventID
		}
		if err := db.Model(&billing.Payment{}).Where("id = ?", attempt.ID).Updates(updates).Error; err != nil {
			return out, fmt.Errorf("update payment attempt %s: %w", v.TxRef, err)
		}
	}

	if out.Changed {
		metrics.PaymentsRecorded.WithLabelValues(string(v.Status)).Inc()
		events.Emit(ctx, events.SubjectPaymentRecorded, events.PaymentEvent{
			SubmissionID: rec.ID,
			TxRef:        v.TxRef,
			Status:       string(v.Status),
			AmountETB:    v.AmountETB,
			Source:       source,
			At:           time.Now(),
		})
	}
	return out, nil
}

func findSubmission(db *gorm.DB, v stripe.Verification) (submissions.Record, error) {
	if v.SubmissionID != "" {
		rec, err := submissions.Get(db, v.SubmissionID)
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, err
		}
	}
	return submissions.FindByTxRef(db, v.TxRef)
}
