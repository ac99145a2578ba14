package stripe

import (
	"strings"

	"auraweb-intake/internal/domain/submissions"
)

// NormalizePaymentStatus maps a checkout session's payment_status (and
// session status, for expiry) onto the submission's payment status.
func NormalizePaymentStatus(paymentStatus, sessionStatus string) submissions.PaymentStatus {
	switch strings.TrimSpace(paymentStatus) {
	case "paid", "no_payment_required":
		return submissions.PaymentPaid
	}
	if strings.TrimSpace(sessionStatus) == "expired" {
		return submissions.PaymentFailed
	}
	return submissions.PaymentPending
}
