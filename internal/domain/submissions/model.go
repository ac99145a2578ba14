package submissions

import (
	"encoding/json"
	"strings"
	"time"

	"auraweb-intake/internal/domain/geo"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// Record is the persisted row. JSON-ish columns are stored as JSON and
// decoded leniently on the way out (see ToSubmission).
type Record struct {
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
	Latitude       *float64
	Longitude      *float64

	AboutUs      string `gorm:"type:text"`
	Services     datatypes.JSON
	WorkingHours string
	SocialLinks  datatypes.JSON

	Language     string `gorm:"type:varchar(32)"`
	PrimaryColor string `gorm:"type:varchar(32)"`
	ThemeStyle   string `gorm:"type:varchar(64)"`
	SpecialNotes *string `gorm:"type:text"`

	LogoURL   *string        `gorm:"column:logo_url"`
	ImageURLs datatypes.JSON `gorm:"column:image_urls"`

	PaymentStatus string  `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentTxRef  *string `gorm:"column:payment_tx_ref;type:varchar(100);uniqueIndex:idx_submissions_payment_tx_ref"`
	PaymentAmount *int64
	PaidAt        *time.Time

	AdminNotes        *string `gorm:"type:text"`
	AssignedTo        *string `gorm:"type:varchar(100)"`
	EstimatedDelivery *datatypes.Date

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "submissions" }

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Payment struct {
	Status PaymentStatus `json:"status"`
	TxRef  *string       `json:"txRef,omitempty"`
	Amount *int64        `json:"amount,omitempty"`
	PaidAt *time.Time    `json:"paidAt,omitempty"`
}

// Submission is the wire shape shared by the API, the local cache and the
// client controllers.
type Submission struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      Status    `json:"status"`

	PackageID      string    `json:"packageId"`
	BusinessName   string    `json:"businessName"`
	BusinessType   string    `json:"businessType"`
	Phone          string    `json:"phone"`
	Email          *string   `json:"email,omitempty"`
	Address        string    `json:"address"`
	GoogleMapsLink *string   `json:"googleMapsLink,omitempty"`
	Location       *Location `json:"location,omitempty"`

	AboutUs      string            `json:"aboutUs"`
	Services     []string          `json:"services"`
	WorkingHours string            `json:"workingHours"`
	SocialLinks  map[string]string `json:"socialLinks"`

	Language     string  `json:"language"`
	PrimaryColor string  `json:"primaryColor"`
	ThemeStyle   string  `json:"themeStyle"`
	SpecialNotes *string `json:"specialNotes,omitempty"`

	LogoURL   *string   `json:"logoUrl,omitempty"`
	ImageURLs MediaRefs `json:"imageUrls"`

	Payment       *Payment `json:"payment,omitempty"`
	DepositAmount int64    `json:"depositAmount"`

	AdminNotes        *string `json:"adminNotes,omitempty"`
	AssignedTo        *string `json:"assignedTo,omitempty"`
	EstimatedDelivery *string `json:"estimatedDelivery,omitempty"`
}

// SanitizeServices trims every entry and drops the blank ones.
// The result is never nil.
func SanitizeServices(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func locationFor(link *string) *Location {
	if link == nil {
		return nil
	}
	p, ok := geo.ParseMapsLink(*link)
	if !ok {
		return nil
	}
	return &Location{Lat: p.Lat(), Lng: p.Lon()}
}

// ToSubmission maps a row to the wire shape.
func (r Record) ToSubmission() Submission {
	s := Submission{
		ID:             r.ID,
		SubmittedAt:    r.SubmittedAt,
		Status:         Status(r.Status),
		PackageID:      r.PackageID,
		BusinessName:   r.BusinessName,
		BusinessType:   r.BusinessType,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
		GoogleMapsLink: r.GoogleMapsLink,
		AboutUs:        r.AboutUs,
		Services:       decodeServices(r.Services),
		WorkingHours:   r.WorkingHours,
		SocialLinks:    decodeSocialLinks(r.SocialLinks),
		Language:       r.Language,
		PrimaryColor:   r.PrimaryColor,
		ThemeStyle:     r.ThemeStyle,
		SpecialNotes:   r.SpecialNotes,
		LogoURL:        r.LogoURL,
		ImageURLs:      DecodeMediaRefs(r.ImageURLs),
		DepositAmount:  DepositAmount(r.PackageID),
		AdminNotes:     r.AdminNotes,
		AssignedTo:     r.AssignedTo,
	}

	if r.Latitude != nil && r.Longitude != nil {
		s.Location = &Location{Lat: *r.Latitude, Lng: *r.Longitude}
	}

	if r.EstimatedDelivery != nil {
		d := time.Time(*r.EstimatedDelivery).Format(dateLayout)
		s.EstimatedDelivery = &d
	}

	ps := PaymentStatus(r.PaymentStatus)
	if r.PaymentTxRef != nil || (ps != "" && ps != PaymentPending) {
		if ps == "" {
			ps = PaymentPending
		}
		s.Payment = &Payment{
			Status: ps,
			TxRef:  r.PaymentTxRef,
			Amount: r.PaymentAmount,
			PaidAt: r.PaidAt,
		}
	}

	return s
}

// NewRecord maps a finalized submission to a row ready for insert.
func NewRecord(s Submission) (Record, error) {
	services, err := json.Marshal(SanitizeServices(s.Services))
	if err != nil {
		return Record{}, err
	}
	links := s.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	social, err := json.Marshal(links)
	if err != nil {
		return Record{}, err
	}
	images, err := json.Marshal(s.ImageURLs)
	if err != nil {
		return Record{}, err
	}

	r := Record{
		ID:             s.ID,
		SubmittedAt:    s.SubmittedAt,
		Status:         string(s.Status),
		PackageID:      s.PackageID,
		BusinessName:   s.BusinessName,
		BusinessType:   s.BusinessType,
		Phone:          s.Phone,
		Email:          s.Email,
		Address:        s.Address,
		GoogleMapsLink: s.GoogleMapsLink,
		AboutUs:        s.AboutUs,
		Services:       datatypes.JSON(services),
		WorkingHours:   s.WorkingHours,
		SocialLinks:    datatypes.JSON(social),
		Language:       s.Language,
		PrimaryColor:   s.PrimaryColor,
		ThemeStyle:     s.ThemeStyle,
		SpecialNotes:   s.SpecialNotes,
		LogoURL:        s.LogoURL,
		ImageURLs:      datatypes.JSON(images),
		PaymentStatus:  string(PaymentPending),
		AdminNotes:     s.AdminNotes,
		AssignedTo:     s.AssignedTo,
	}

	if loc := locationFor(s.GoogleMapsLink); loc != nil {
		r.Latitude = &loc.Lat
		r.Longitude = &loc.Lng
	}
	return r, nil
}

func decodeServices(raw datatypes.JSON) []string {
	var list []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			// older rows stored a single free-text line
			var one string
			if json.Unmarshal(raw, &one) == nil {
				list = []string{one}
			}
		}
	}
	return SanitizeServices(list)
}

func decodeSocialLinks(raw datatypes.JSON) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// Clone returns a deep copy, so snapshots never share slices or pointers.
func (s Submission) Clone() Submission {
	c := s
	c.Email = clonePtr(s.Email)
	c.GoogleMapsLink = clonePtr(s.GoogleMapsLink)
	c.SpecialNotes = clonePtr(s.SpecialNotes)
	c.LogoURL = clonePtr(s.LogoURL)
	c.AdminNotes = clonePtr(s.AdminNotes)
	c.AssignedTo = clonePtr(s.AssignedTo)
	c.EstimatedDelivery = clonePtr(s.EstimatedDelivery)
	c.Location = clonePtr(s.Location)

	if s.Services != nil {
		c.Services = make([]string, len(s.Services))
		copy(c.Services, s.Services)
	}
	if s.ImageURLs != nil {
		c.ImageURLs = make(MediaRefs, len(s.ImageURLs))
		copy(c.ImageURLs, s.ImageURLs)
	}
	if s.SocialLinks != nil {
		c.SocialLinks = make(map[string]string, len(s.SocialLinks))
		for k, v := range s.SocialLinks {
			c.SocialLinks[k] = v
		}
	}
	if s.Payment != nil {
		p := *s.Payment
		p.TxRef = clonePtr(s.Payment.TxRef)
		p.Amount = clonePtr(s.Payment.Amount)
		p.PaidAt = clonePtr(s.Payment.PaidAt)
		c.Payment = &p
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
