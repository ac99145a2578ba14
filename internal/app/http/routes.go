package routes

import (
	"net/http"

	"auraweb-intake/config"
	adminapi "auraweb-intake/internal/api/admin"
	authapi "auraweb-intake/internal/api/auth"
	"auraweb-intake/internal/api/billing"
	"auraweb-intake/internal/api/packages"
	portfolioapi "auraweb-intake/internal/api/portfolio"
	stripewebhooks "auraweb-intake/internal/api/stripewebhook"
	submissionsapi "auraweb-intake/internal/api/submissions"
	"auraweb-intake/internal/api/uploads"
	"auraweb-intake/internal/api/users"
	"auraweb-intake/internal/app/http/middleware"
	userdomain "auraweb-intake/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// local-disk uploads; with GCS the URLs point at the bucket instead
	if config.GCS_BUCKET == "" && config.UPLOAD_DIR != "" {
		r.Static("/uploads", config.UPLOAD_DIR)
	}

	api := r.Group("/api")

	// signature covers the raw body, so no sanitizing here
	api.POST("/webhook/stripe", stripewebhooks.StripeWebhook)

	public := api.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/auth/login", authapi.Login)
	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	public.GET("/packages", packages.ListPackages)
	public.POST("/submissions", submissionsapi.CreateSubmission)
	public.GET("/track", submissionsapi.TrackOrder)
	public.GET("/payments/verify", billing.VerifyPayment)
	public.GET("/portfolio", portfolioapi.ListItems)

	admin := api.Group("/")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(userdomain.RoleAdmin),
		middleware.RequireActiveAccount(),
		middleware.SanitizeAndCleanInputMiddleware(),
	)

	admin.GET("/auth/me", users.GetCurrentUser)
	admin.POST("/auth/password", authapi.ChangePassword)

	admin.GET("/submissions", submissionsapi.ListSubmissions)
	admin.GET("/submissions/:id", submissionsapi.GetSubmission)
	admin.PATCH("/submissions/:id", submissionsapi.UpdateSubmission)
	admin.POST("/submissions/:id/create_payment", billing.CreatePaymentLink)

	admin.POST("/upload", uploads.UploadFile)
	admin.GET("/stats", adminapi.GetStats)
	admin.GET("/export/submissions.xlsx", submissionsapi.ExportSubmissions)
	admin.GET("/payments", adminapi.ListAllPayments)

	admin.POST("/portfolio", portfolioapi.CreateItem)
	admin.DELETE("/portfolio/:id", portfolioapi.DeleteItem)

	admin.GET("/admin/users", adminapi.ListAllUsers)
	admin.POST("/admin/users", adminapi.CreateUser)
	admin.PATCH("/admin/users/:id", adminapi.SetUserActive)
}
