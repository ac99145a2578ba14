package media

import "time"

// Image records one stored upload. ID is assigned in Go so the row works
// on every dialect.
type Image struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ObjectKey   string `gorm:"not null" json:"object_key"`
	URL         string `gorm:"column:url;not null" json:"url"`
	ContentType string `gorm:"type:varchar(100)" json:"content_type"`
	Size        int64  `json:"size"`

	// empty for admin uploads that are not yet attached to an order
	SubmissionID *string `gorm:"type:varchar(64);index" json:"submission_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
