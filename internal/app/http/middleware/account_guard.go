package middleware

import (
	"net/http"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// RequireActiveAccount rejects tokens whose account was deleted or
// deactivated after the token was issued. Runs after AuthMiddleware.
func RequireActiveAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		var user users.User
		if err := database.DB.Select("id", "role", "is_active").First(&user, userID).Error; err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is disabled or no longer exists"})
			return
		}
		c.Next()
	}
}
