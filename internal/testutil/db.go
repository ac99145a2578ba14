// Package testutil holds fixtures shared by the handler tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/submissions"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UseDB points database.DB at a fresh migrated in-memory SQLite database
// for the duration of the test.
func UseDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return db
}

// Submission is a complete, valid intake record.
func Submission(id string) submissions.Submission {
	email := "owner@tomoca.et"
	return submissions.Submission{
		ID:           id,
		SubmittedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:       submissions.StatusSubmitted,
		PackageID:    submissions.PackageBusiness,
		BusinessName: "Tomoca Coffee",
		BusinessType: "Restaurant",
		Phone:        "+251 911 000 111",
		Email:        &email,
		Address:      "Piassa, Addis Ababa",
		AboutUs:      "Coffee since 1953.",
		Services:     []string{"Espresso", "Beans"},
		SocialLinks:  map[string]string{"instagram": "@tomoca"},
		Language:     "English",
		PrimaryColor: "#1e40af",
		ThemeStyle:   "Modern & Clean",
		ImageURLs:    submissions.MediaRefs{},
	}
}

// SeedSubmission inserts Submission(id), optionally adjusted by mutate.
func SeedSubmission(t testing.TB, db *gorm.DB, id string, mutate func(*submissions.Submission)) submissions.Submission {
	t.Helper()
	s := Submission(id)
	if mutate != nil {
		mutate(&s)
	}
	created, err := submissions.Insert(db, s)
	require.NoError(t, err)
	return created
}
