package submissions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

/*
	Store helpers
	-------------
	Every server path that writes a submission goes through here, so the
	transition rule and the per-column update policy live in one place.
	db is passed in; this package never imports the database package.
*/

var (
	ErrPhoneMismatch = errors.New("phone does not match order")
	ErrDuplicateID   = errors.New("submission id already exists")
)

// Change describes one applied patch.
type Change struct {
	Before Submission
	After  Submission
	Fields []string
}

func (c Change) StatusChanged() bool {
	return c.Before.Status != c.After.Status
}

func Insert(db *gorm.DB, s Submission) (Submission, error) {
	if db == nil {
		return Submission{}, fmt.Errorf("db is nil")
	}
	rec, err := NewRecord(s)
	if err != nil {
		return Submission{}, fmt.Errorf("encode submission: %w", err)
	}
	if err := db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Submission{}, ErrDuplicateID
		}
		return Submission{}, err
	}
	return rec.ToSubmission(), nil
}

func Get(db *gorm.DB, id string) (Record, error) {
	var rec Record
	err := db.Where("id = ?", id).First(&rec).Error
	return rec, err
}

// List returns every submission, newest first.
func List(db *gorm.DB) ([]Submission, error) {
	var rows []Record
	if err := db.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToSubmission())
	}
	return out, nil
}

func FindByTxRef(db *gorm.DB, txRef string) (Record, error) {
	var rec Record
	err := db.Where("payment_tx_ref = ?", txRef).First(&rec).Error
	return rec, err
}

// ApplyPatch validates p against the stored status and writes only the
// columns p sets, inside one transaction.
func ApplyPatch(db *gorm.DB, id string, p Patch) (Change, error) {
	var change Change
	err := db.Transaction(func(tx *gorm.DB) error {
		rec, err := Get(tx, id)
		if err != nil {
			return err
		}
		if err := p.Validate(Status(rec.Status)); err != nil {
			return err
		}
		change.Before = rec.ToSubmission()

		if err := tx.Model(&Record{}).Where("id = ?", id).Updates(p.Columns()).Error; err != nil {
			return fmt.Errorf("update submission %s: %w", id, err)
		}

		fresh, err := Get(tx, id)
		if err != nil {
			return err
		}
		change.After = fresh.ToSubmission()
		change.Fields = p.Fields()
		return nil
	})
	return change, err
}

// Track looks an order up for the public tracking page. The phone must
// match the stored one, ignoring formatting.
func Track(db *gorm.DB, orderID, phone string) (Tracking, error) {
	rec, err := Get(db, strings.TrimSpace(orderID))
	if err != nil {
		return Tracking{}, err
	}
	if digits(phone) == "" || digits(phone) != digits(rec.Phone) {
		return Tracking{}, ErrPhoneMismatch
	}
	return NewTracking(rec.ToSubmission()), nil
}

type Stats struct {
	TotalSubmissions int64            `json:"total_submissions"`
	TodaySubmissions int64            `json:"today_submissions"`
	PendingReview    int64            `json:"pending_review"`
	InProgress       int64            `json:"in_progress"`
	Completed        int64            `json:"completed"`
	TotalRevenue     int64            `json:"total_revenue"`
	PendingPayments  int64            `json:"pending_payments"`
	ByPackage        map[string]int64 `json:"by_package"`
}

func ComputeStats(db *gorm.DB, now time.Time) (Stats, error) {
	st := Stats{ByPackage: map[string]int64{}}
	base := func() *gorm.DB { return db.Model(&Record{}) }

	if err := base().Count(&st.TotalSubmissions).Error; err != nil {
		return st, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := base().Where("submitted_at >= ?", dayStart).Count(&st.TodaySubmissions).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ?", string(StatusSubmitted)).Count(&st.PendingReview).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ?", string(StatusInProgress)).Count(&st.InProgress).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ?", string(StatusCompleted)).Count(&st.Completed).Error; err != nil {
		return st, err
	}
	if err := base().
		Where("payment_status = ? AND payment_tx_ref IS NOT NULL", string(PaymentPending)).
		Count(&st.PendingPayments).Error; err != nil {
		return st, err
	}

	var revenue struct{ Total int64 }
	if err := base().
		Select("COALESCE(SUM(payment_amount), 0) AS total").
		Where("payment_status = ?", string(PaymentPaid)).
		Scan(&revenue).Error; err != nil {
		return st, err
	}
	st.TotalRevenue = revenue.Total

	var rows []struct {
		PackageID string
		N         int64
	}
	if err := base().
		Select("package_id, COUNT(*) AS n").
		Group("package_id").
		Scan(&rows).Error; err != nil {
		return st, err
	}
	for _, r := range rows {
		st.ByPackage[r.PackageID] = r.N
	}
	return st, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
