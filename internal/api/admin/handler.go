package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"auraweb-intake/database"
	"auraweb-intake/internal/api/auth"
	"auraweb-intake/internal/domain/billing"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/domain/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	Email        *string    `json:"email,omitempty"`
	AuthProvider string     `json:"auth_provider"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    string     `json:"created_at"`
}

type AdminPayment struct {
	ID           uint   `json:"id"`
	SubmissionID string `json:"submission_id"`
	BusinessName string `json:"business_name"`
	TxRef        string `json:"tx_ref"`
	AmountETB    int64  `json:"amount_etb"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	CheckoutURL  string `json:"checkout_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		AuthProvider: u.AuthProvider,
		Role:         u.Role,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// GET /api/stats
func GetStats(c *gin.Context) {
	stats, err := submissions.ComputeStats(database.DB, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/users
func ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("id").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	result := make([]AdminUser, 0, len(list))
	for _, u := range list {
		result = append(result, toAdminUser(u))
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/admin/users
func CreateUser(c *gin.Context) {
	var input struct {
		Username string  `json:"username" binding:"required"`
		Password string  `json:"password" binding:"required"`
		Email    *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !auth.IsPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	password := string(hashed)

	user := users.User{
		Username:     strings.TrimSpace(input.Username),
		Password:     &password,
		AuthProvider: "local",
		Role:         users.RoleAdmin,
		IsActive:     true,
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		user.Email = &email
	}

	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, toAdminUser(user))
}

// PATCH /api/admin/users/:id  {"is_active": false}
func SetUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var body struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if uint(id) == c.GetUint("user_id") && !*body.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot deactivate your own account"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := database.DB.Model(&user).Update("is_active", *body.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	user.IsActive = *body.IsActive
	c.JSON(http.StatusOK, toAdminUser(user))
}

// GET /api/payments[?submission_id=...]
func ListAllPayments(c *gin.Context) {
	type row struct {
		billing.Payment
		BusinessName string
	}

	q := database.DB.
		Table("payments").
		Select("payments.*, submissions.business_name").
		Joins("LEFT JOIN submissions ON submissions.id = payments.submission_id").
		Order("payments.created_at DESC")
	if id := c.Query("submission_id"); id != "" {
		q = q.Where("payments.submission_id = ?", id)
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	result := make([]AdminPayment, 0, len(rows))
	for _, p := range rows {
		result = append(result, AdminPayment{
			ID:           p.ID,
			SubmissionID: p.SubmissionID,
			BusinessName: p.BusinessName,
			TxRef:        p.TxRef,
			AmountETB:    p.AmountETB,
			Currency:     p.Currency,
			Status:       p.Status,
			CheckoutURL:  p.CheckoutURL,
			CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, result)
}
