package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"auraweb-intake/database"
	"auraweb-intake/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /api/payments/verify?tx_ref=...
func VerifyPayment(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_ref is required"})
		return
	}
	if stripe.Default == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
		return
	}

	v, err := stripe.Default.Verify(c.Request.Context(), txRef)
	if err != nil {
		if errors.Is(err, stripe.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
			return
		}
		slog.Warn("Payment verification failed", "tx_ref", txRef, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify payment"})
		return
	}

	out, err := Settle(c.Request.Context(), database.DB, v, nil, "verify")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No submission for this payment"})
			return
		}
		slog.Error("Payment settle failed", "tx_ref", txRef, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        string(out.Status),
		"tx_ref":        v.TxRef,
		"amount":        v.AmountETB,
		"submission_id": out.Submission.ID,
		"order_status":  string(out.Submission.Status),
		"business_name": out.Submission.BusinessName,
		"package":       out.Submission.PackageID,
	})
}
