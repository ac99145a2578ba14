package database

import (
	"time"

	"auraweb-intake/internal/domain/billing"
	"auraweb-intake/internal/domain/media"
	"auraweb-intake/internal/domain/portfolio"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/domain/users"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// submissionV1 is the submissions table as first shipped. It stays frozen
// so later steps have real columns to add.
type submissionV1 struct {
	ID          string    `gorm:"type:varchar(64);primaryKey"`
	SubmittedAt time.Time `gorm:"not null;index"`
	Status      string    `gorm:"type:varchar(32);not null;default:'Submitted';index"`

	PackageID      string `gorm:"column:package_id;type:varchar(32);not null"`
	BusinessName   string `gorm:"not null"`
	BusinessType   string `gorm:"type:varchar(64)"`
	Phone          string `gorm:"type:varchar(50);index"`
	Email          *string
	Address        string
	GoogleMapsLink *string `gorm:"column:google_maps_link"`

	AboutUs      string `gorm:"type:text"`
	Services     datatypes.JSON
	WorkingHours string
	SocialLinks  datatypes.JSON

	Language     string  `gorm:"type:varchar(32)"`
	PrimaryColor string  `gorm:"type:varchar(32)"`
	ThemeStyle   string  `gorm:"type:varchar(64)"`
	SpecialNotes *string `gorm:"type:text"`

	LogoURL   *string        `gorm:"column:logo_url"`
	ImageURLs datatypes.JSON `gorm:"column:image_urls"`

	PaymentStatus string  `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentTxRef  *string `gorm:"column:payment_tx_ref;type:varchar(100);uniqueIndex:idx_submissions_payment_tx_ref"`
	PaymentAmount *int64
	PaidAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (submissionV1) TableName() string { return "submissions" }

var submissionAdminFields = []string{"AdminNotes", "AssignedTo", "EstimatedDelivery", "Latitude", "Longitude"}

// Migrate brings the schema up to date. Every step must run on both
// postgres and sqlite.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20260301_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&users.User{},
					&submissionV1{},
					&portfolio.Item{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("portfolio_items", "submissions", "users")
			},
		},
		{
			ID: "20260315_add_payment_ledger",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&billing.Payment{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("payments")
			},
		},
		{
			ID: "20260322_add_upload_ledger",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&media.Image{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("images")
			},
		},
		{
			ID: "20260410_add_submission_admin_fields",
			Migrate: func(tx *gorm.DB) error {
				m := tx.Migrator()
				for _, field := range submissionAdminFields {
					if m.HasColumn(&submissions.Record{}, field) {
						continue
					}
					if err := m.AddColumn(&submissions.Record{}, field); err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				m := tx.Migrator()
				for _, field := range submissionAdminFields {
					if !m.HasColumn(&submissions.Record{}, field) {
						continue
					}
					if err := m.DropColumn(&submissions.Record{}, field); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
