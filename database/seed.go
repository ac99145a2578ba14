package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auraweb-intake/internal/domain/users"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedBootstrapAdmin creates the first console account when the username
// is not taken yet. Blank credentials skip seeding.
func SeedBootstrapAdmin(db *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	var existing users.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	h := string(hashed)

	admin := users.User{
		Username:     username,
		Password:     &h,
		AuthProvider: "local",
		Role:         users.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	slog.Info("Bootstrap admin created", "username", username)
	return nil
}
