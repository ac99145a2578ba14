package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"auraweb-intake/database"
	submissionsapi "auraweb-intake/internal/api/submissions"
	"auraweb-intake/internal/domain/billing"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/infra/mail"
	"auraweb-intake/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POST /api/submissions/:id/create_payment[?notify=true]
//
// Opens a hosted checkout for the 50% deposit, records the attempt and moves
// the submission towards Payment Pending. With notify=true the link is also
// mailed to the customer.
func CreatePaymentLink(c *gin.Context) {
	id := c.Param("id")

	rec, err := submissions.Get(database.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}

	if err := submissions.CanRequestPayment(rec); err != nil {
		if errors.Is(err, submissions.ErrAlreadyPaid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment already received for this submission"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Submission is " + rec.Status + ", no payment can be requested"})
		return
	}

	if stripe.Default == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
		return
	}

	sub := rec.ToSubmission()
	amount := submissions.DepositAmount(sub.PackageID)
	req := stripe.CheckoutRequest{
		SubmissionID: sub.ID,
		BusinessName: sub.BusinessName,
		PackageID:    sub.PackageID,
		AmountETB:    amount,
	}
	if sub.Email != nil {
		req.CustomerEmail = *sub.Email
	}

	checkout, err := stripe.Default.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, stripe.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
			return
		}
		slog.Error("Checkout creation failed", "submission_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment link"})
		return
	}

	attempt := billing.Payment{
		SubmissionID: sub.ID,
		TxRef:        checkout.TxRef,
		AmountETB:    checkout.Amount,
		Currency:     checkout.Currency,
		Status:       string(submissions.PaymentPending),
		CheckoutURL:  checkout.URL,
	}
	if err := database.DB.Create(&attempt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment attempt"})
		return
	}

	change, err := submissionsapi.Commit(c.Request.Context(), database.DB, id,
		submissions.LinkCreatedPatch(submissions.Status(rec.Status), checkout.TxRef, checkout.Amount))
	if err != nil {
		slog.Error("Payment link commit failed", "submission_id", id, "tx_ref", checkout.TxRef, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	if c.Query("notify") == "true" {
		go mail.NotifyPaymentRequest(change.After, checkout.URL, checkout.Amount)
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": checkout.URL,
		"tx_ref":       checkout.TxRef,
		"amount":       checkout.Amount,
		"currency":     checkout.Currency,
		"submission":   change.After,
	})
}
