package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"auraweb-intake/config"
	"auraweb-intake/database"
	routes "auraweb-intake/internal/app/http"
	"auraweb-intake/internal/infra/blob"
	"auraweb-intake/internal/infra/events"
	"auraweb-intake/internal/infra/mail"
	"auraweb-intake/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel()})))

	database.InitDB()

	store, err := blob.FromConfig(context.Background(), config.GCS_BUCKET, config.UPLOAD_DIR, config.PUBLIC_BASE_URL)
	if err != nil {
		slog.Error("Failed to init upload storage", "error", err)
		os.Exit(1)
	}
	blob.Default = store

	if config.NATS_URL != "" {
		nc, err := events.Connect(config.NATS_URL)
		if err != nil {
			// submissions still work without events
			slog.Warn("NATS unavailable, events disabled", "url", config.NATS_URL, "error", err)
		} else {
			events.Default = nc
			defer nc.Close()
		}
	}

	if config.SMTP_HOST != "" {
		mail.Default = mail.SMTP{
			Host:     config.SMTP_HOST,
			Port:     config.SMTP_PORT,
			From:     config.SMTP_FROM,
			Password: config.SMTP_PASSWORD,
		}
	}

	stripe.Default = stripe.New(config.STRIPE_SECRET_KEY, config.APP_URL)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	slog.Info("Server starting", "port", config.PORT, "storage", storageName(), "payments", config.STRIPE_SECRET_KEY != "")
	if err := r.Run(":" + config.PORT); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func storageName() string {
	if config.GCS_BUCKET != "" {
		return "gcs"
	}
	return "local"
}
