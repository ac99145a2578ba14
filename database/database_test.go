package database

import (
	"log/slog"
	"testing"

	"auraweb-intake/internal/domain/users"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "submissions", "portfolio_items", "payments", "images"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn("submissions", "admin_notes"))
}

func TestMigrate_AdminFieldsStep(t *testing.T) {
	db := openMemory(t)
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())

	require.NoError(t, m.MigrateTo("20260322_add_upload_ledger"))
	assert.True(t, db.Migrator().HasTable("submissions"))
	for _, col := range []string{"admin_notes", "assigned_to", "estimated_delivery", "latitude", "longitude"} {
		assert.False(t, db.Migrator().HasColumn("submissions", col), col)
	}

	require.NoError(t, Migrate(db))
	for _, col := range []string{"admin_notes", "assigned_to", "estimated_delivery", "latitude", "longitude"} {
		assert.True(t, db.Migrator().HasColumn("submissions", col), col)
	}

	require.NoError(t, m.RollbackLast())
	assert.False(t, db.Migrator().HasColumn("submissions", "admin_notes"))
	assert.True(t, db.Migrator().HasColumn("submissions", "business_name"))
}

func TestSeedBootstrapAdmin(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedBootstrapAdmin(db, "", "ignored"))
	require.NoError(t, SeedBootstrapAdmin(db, "owner", "s3cret-pass"))
	require.NoError(t, SeedBootstrapAdmin(db, "owner", "another"))

	var all []users.User
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	assert.Equal(t, users.RoleAdmin, all[0].Role)
	require.NotNil(t, all[0].Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*all[0].Password), []byte("s3cret-pass")))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel(slog.LevelDebug))
	assert.Equal(t, logger.Warn, gormLogLevel(slog.LevelInfo))
	assert.Equal(t, logger.Warn, gormLogLevel(slog.LevelWarn))
	assert.Equal(t, logger.Error, gormLogLevel(slog.LevelError))
}
