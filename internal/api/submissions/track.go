package submissionsapi

import (
	"errors"
	"net/http"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/submissions"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /api/track?order_id=...&phone=...
func TrackOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	phone := c.Query("phone")
	if orderID == "" || phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id and phone are required"})
		return
	}

	tracking, err := submissions.Track(database.DB, orderID, phone)
	if err != nil {
		// same answer for unknown id and wrong phone
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, submissions.ErrPhoneMismatch) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found. Please check your Order ID and phone number."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up order"})
		return
	}
	c.JSON(http.StatusOK, tracking)
}
