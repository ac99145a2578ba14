package users

import (
	"net/http"

	"auraweb-intake/config"
	"auraweb-intake/database"
	"auraweb-intake/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// GET /api/auth/me
func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	storage := "local"
	if config.GCS_BUCKET != "" {
		storage = "gcs"
	}

	c.JSON(http.StatusOK, MeResponse{
		User: UserDTO{
			ID:           user.ID,
			Username:     user.Username,
			Email:        user.Email,
			AuthProvider: user.AuthProvider,
			Role:         user.Role,
			LastLoginAt:  user.LastLoginAt,
		},
		Features: FeaturesDTO{
			Payments:     config.STRIPE_SECRET_KEY != "",
			GoogleSignIn: config.GoogleEnabled(),
			Mail:         config.SMTP_HOST != "",
			Events:       config.NATS_URL != "",
			Storage:      storage,
		},
	})
}
