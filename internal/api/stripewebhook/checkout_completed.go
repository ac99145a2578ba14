package stripewebhooks

import (
	"errors"
	"fmt"
	"log/slog"

	"auraweb-intake/database"
	billingapi "auraweb-intake/internal/api/billing"
	"auraweb-intake/internal/domain/submissions"
	gateway "auraweb-intake/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// handleCheckoutSession settles a session delivered by a webhook. Sessions
// that do not belong to a submission are acknowledged and ignored.
func handleCheckoutSession(c *gin.Context, eventID, eventType string, session *stripe.CheckoutSession) (bool, error) {
	v := gateway.FromSession(session)
	if v.TxRef == "" {
		return true, nil
	}

	switch eventType {
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		v.Status = submissions.PaymentFailed
	case "checkout.session.async_payment_succeeded":
		v.Status = submissions.PaymentPaid
	}
	if v.Status == submissions.PaymentPending {
		// completed but still processing; async_payment_* follows
		return true, nil
	}

	out, err := billingapi.Settle(c.Request.Context(), database.DB, v, &eventID, "webhook")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Info("Stripe session without submission", "session_id", v.TxRef, "event_id", eventID)
			return true, nil
		}
		return false, fmt.Errorf("settle session %s: %w", v.TxRef, err)
	}

	slog.Info("Stripe checkout settled",
		"event_id", eventID,
		"submission_id", out.Submission.ID,
		"payment_status", out.Status,
		"changed", out.Changed,
	)
	return false, nil
}
