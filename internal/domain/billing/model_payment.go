package billing

import "time"

// Payment is one checkout attempt for a submission's deposit. The
// submission row keeps the latest attempt; this table keeps them all.
type Payment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubmissionID string `gorm:"type:varchar(64);not null;index" json:"submission_id"`
	TxRef        string `gorm:"column:tx_ref;type:varchar(100);not null;uniqueIndex:idx_payments_tx_ref" json:"tx_ref"`
	AmountETB    int64  `gorm:"column:amount_etb;not null" json:"amount_etb"`
	Currency     string `gorm:"type:varchar(8);not null;default:'ETB'" json:"currency"`
	Status       string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CheckoutURL  string `json:"checkout_url"`

	// last processed webhook event, so redeliveries are no-ops
	StripeEventID *string `gorm:"column:stripe_event_id;type:varchar(100)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
