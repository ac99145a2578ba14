package database

import (
	"log"
	"log/slog"

	"auraweb-intake/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB connects to DB_URL, migrates and seeds the bootstrap admin.
// Any failure here is fatal.
func InitDB() {
	db, err := gorm.Open(postgres.Open(config.DB_URL), &gorm.Config{
		// surfaces unique violations as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(config.LogLevel())),
	})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatal("❌ Migration error:", err)
	}

	if err := SeedBootstrapAdmin(DB, config.BOOTSTRAP_ADMIN_USERNAME, config.BOOTSTRAP_ADMIN_PASSWORD); err != nil {
		log.Fatal("❌ Failed to seed admin account:", err)
	}

	slog.Info("Connected and migrated successfully")
}

func gormLogLevel(l slog.Level) logger.LogLevel {
	switch {
	case l <= slog.LevelDebug:
		return logger.Info
	case l <= slog.LevelWarn:
		return logger.Warn
	default:
		return logger.Error
	}
}
