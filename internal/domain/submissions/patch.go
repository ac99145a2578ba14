package submissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrEmptyPatch   = errors.New("patch has no fields")
	ErrInvalidPatch = errors.New("invalid patch")
)

// Patch is a partial update. A nil field means "leave unchanged"; only
// non-nil fields travel over the wire and only those columns are written.
// Empty strings clear the optional fields.
type Patch struct {
	Status *Status `json:"status,omitempty"`

	BusinessName   *string `json:"businessName,omitempty"`
	BusinessType   *string `json:"businessType,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Address        *string `json:"address,omitempty"`
	GoogleMapsLink *string `json:"googleMapsLink,omitempty"`

	AboutUs      *string            `json:"aboutUs,omitempty"`
	Services     *[]string          `json:"services,omitempty"`
	WorkingHours *string            `json:"workingHours,omitempty"`
	SocialLinks  *map[string]string `json:"socialLinks,omitempty"`

	Language     *string `json:"language,omitempty"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
	ThemeStyle   *string `json:"themeStyle,omitempty"`
	SpecialNotes *string `json:"specialNotes,omitempty"`

	LogoURL   *string    `json:"logoUrl,omitempty"`
	ImageURLs *MediaRefs `json:"imageUrls,omitempty"`

	AdminNotes        *string `json:"adminNotes,omitempty"`
	AssignedTo        *string `json:"assignedTo,omitempty"`
	EstimatedDelivery *string `json:"estimatedDelivery,omitempty"`

	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentTxRef  *string        `json:"paymentTxRef,omitempty"`
	PaymentAmount *int64         `json:"paymentAmount,omitempty"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`

	// StatusOverride allows a backward status move. Sent as ?override=true.
	StatusOverride bool `json:"-"`
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil &&
		p.BusinessName == nil && p.BusinessType == nil && p.Phone == nil &&
		p.Email == nil && p.Address == nil && p.GoogleMapsLink == nil &&
		p.AboutUs == nil && p.Services == nil && p.WorkingHours == nil && p.SocialLinks == nil &&
		p.Language == nil && p.PrimaryColor == nil && p.ThemeStyle == nil && p.SpecialNotes == nil &&
		p.LogoURL == nil && p.ImageURLs == nil &&
		p.AdminNotes == nil && p.AssignedTo == nil && p.EstimatedDelivery == nil &&
		p.PaymentStatus == nil && p.PaymentTxRef == nil && p.PaymentAmount == nil && p.PaidAt == nil
}

// Validate checks the patch against the record's current status.
func (p Patch) Validate(current Status) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Status != nil {
		if err := CheckTransition(current, *p.Status, p.StatusOverride); err != nil {
			return err
		}
	}
	if p.BusinessName != nil && strings.TrimSpace(*p.BusinessName) == "" {
		return fmt.Errorf("%w: businessName cannot be blank", ErrInvalidPatch)
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidPatch, *p.PaymentStatus)
	}
	if p.PaymentAmount != nil && *p.PaymentAmount < 0 {
		return fmt.Errorf("%w: paymentAmount cannot be negative", ErrInvalidPatch)
	}
	if p.EstimatedDelivery != nil && *p.EstimatedDelivery != "" {
		if _, err := time.Parse(dateLayout, *p.EstimatedDelivery); err != nil {
			return fmt.Errorf("%w: estimatedDelivery must be YYYY-MM-DD", ErrInvalidPatch)
		}
	}
	return nil
}

// ApplyTo merges the patch into s in place.
func (p Patch) ApplyTo(s *Submission) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.BusinessName != nil {
		s.BusinessName = *p.BusinessName
	}
	if p.BusinessType != nil {
		s.BusinessType = *p.BusinessType
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Email != nil {
		s.Email = optional(*p.Email)
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.GoogleMapsLink != nil {
		s.GoogleMapsLink = optional(*p.GoogleMapsLink)
		s.Location = locationFor(s.GoogleMapsLink)
	}
	if p.AboutUs != nil {
		s.AboutUs = *p.AboutUs
	}
	if p.Services != nil {
		s.Services = SanitizeServices(*p.Services)
	}
	if p.WorkingHours != nil {
		s.WorkingHours = *p.WorkingHours
	}
	if p.SocialLinks != nil {
		links := make(map[string]string, len(*p.SocialLinks))
		for k, v := range *p.SocialLinks {
			links[k] = v
		}
		s.SocialLinks = links
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.ThemeStyle != nil {
		s.ThemeStyle = *p.ThemeStyle
	}
	if p.SpecialNotes != nil {
		s.SpecialNotes = optional(*p.SpecialNotes)
	}
	if p.LogoURL != nil {
		s.LogoURL = optional(*p.LogoURL)
	}
	if p.ImageURLs != nil {
		s.ImageURLs = cleanRefs(*p.ImageURLs)
	}
	if p.AdminNotes != nil {
		s.AdminNotes = optional(*p.AdminNotes)
	}
	if p.AssignedTo != nil {
		s.AssignedTo = optional(*p.AssignedTo)
	}
	if p.EstimatedDelivery != nil {
		s.EstimatedDelivery = optional(*p.EstimatedDelivery)
	}

	if p.PaymentStatus != nil || p.PaymentTxRef != nil || p.PaymentAmount != nil || p.PaidAt != nil {
		if s.Payment == nil {
			s.Payment = &Payment{Status: PaymentPending}
		}
		if p.PaymentStatus != nil {
			s.Payment.Status = *p.PaymentStatus
		}
		if p.PaymentTxRef != nil {
			s.Payment.TxRef = optional(*p.PaymentTxRef)
		}
		if p.PaymentAmount != nil {
			v := *p.PaymentAmount
			s.Payment.Amount = &v
		}
		if p.PaidAt != nil {
			v := *p.PaidAt
			s.Payment.PaidAt = &v
		}
	}
}

// Restore copies every field the patch touches from before into dst,
// undoing an ApplyTo without disturbing fields the patch left alone.
func (p Patch) Restore(dst *Submission, before Submission) {
	b := before.Clone()
	if p.Status != nil {
		dst.Status = b.Status
	}
	if p.BusinessName != nil {
		dst.BusinessName = b.BusinessName
	}
	if p.BusinessType != nil {
		dst.BusinessType = b.BusinessType
	}
	if p.Phone != nil {
		dst.Phone = b.Phone
	}
	if p.Email != nil {
		dst.Email = b.Email
	}
	if p.Address != nil {
		dst.Address = b.Address
	}
	if p.GoogleMapsLink != nil {
		dst.GoogleMapsLink = b.GoogleMapsLink
		dst.Location = b.Location
	}
	if p.AboutUs != nil {
		dst.AboutUs = b.AboutUs
	}
	if p.Services != nil {
		dst.Services = b.Services
	}
	if p.WorkingHours != nil {
		dst.WorkingHours = b.WorkingHours
	}
	if p.SocialLinks != nil {
		dst.SocialLinks = b.SocialLinks
	}
	if p.Language != nil {
		dst.Language = b.Language
	}
	if p.PrimaryColor != nil {
		dst.PrimaryColor = b.PrimaryColor
	}
	if p.ThemeStyle != nil {
		dst.ThemeStyle = b.ThemeStyle
	}
	if p.SpecialNotes != nil {
		dst.SpecialNotes = b.SpecialNotes
	}
	if p.LogoURL != nil {
		dst.LogoURL = b.LogoURL
	}
	if p.ImageURLs != nil {
		dst.ImageURLs = b.ImageURLs
	}
	if p.AdminNotes != nil {
		dst.AdminNotes = b.AdminNotes
	}
	if p.AssignedTo != nil {
		dst.AssignedTo = b.AssignedTo
	}
	if p.EstimatedDelivery != nil {
		dst.EstimatedDelivery = b.EstimatedDelivery
	}
	if p.PaymentStatus != nil || p.PaymentTxRef != nil || p.PaymentAmount != nil || p.PaidAt != nil {
		dst.Payment = b.Payment
	}
}

// Columns returns the column updates for gorm's Updates. Call Validate first.
func (p Patch) Columns() map[string]interface{} {
	updates := map[string]interface{}{}

	if p.Status != nil {
		updates["status"] = string(*p.Status)
	}
	if p.BusinessName != nil {
		updates["business_name"] = strings.TrimSpace(*p.BusinessName)
	}
	if p.BusinessType != nil {
		updates["business_type"] = *p.BusinessType
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Email != nil {
		updates["email"] = optional(*p.Email)
	}
	if p.Address != nil {
		updates["address"] = *p.Address
	}
	if p.GoogleMapsLink != nil {
		link := optional(*p.GoogleMapsLink)
		updates["google_maps_link"] = link
		if loc := locationFor(link); loc != nil {
			updates["latitude"] = loc.Lat
			updates["longitude"] = loc.Lng
		} else {
			updates["latitude"] = nil
			updates["longitude"] = nil
		}
	}
	if p.AboutUs != nil {
		updates["about_us"] = *p.AboutUs
	}
	if p.Services != nil {
		updates["services"] = mustJSON(SanitizeServices(*p.Services))
	}
	if p.WorkingHours != nil {
		updates["working_hours"] = *p.WorkingHours
	}
	if p.SocialLinks != nil {
		links := *p.SocialLinks
		if links == nil {
			links = map[string]string{}
		}
		updates["social_links"] = mustJSON(links)
	}
	if p.Language != nil {
		updates["language"] = *p.Language
	}
	if p.PrimaryColor != nil {
		updates["primary_color"] = *p.PrimaryColor
	}
	if p.ThemeStyle != nil {
		updates["theme_style"] = *p.ThemeStyle
	}
	if p.SpecialNotes != nil {
		updates["special_notes"] = optional(*p.SpecialNotes)
	}
	if p.LogoURL != nil {
		updates["logo_url"] = optional(*p.LogoURL)
	}
	if p.ImageURLs != nil {
		updates["image_urls"] = mustJSON(cleanRefs(*p.ImageURLs))
	}
	if p.AdminNotes != nil {
		updates["admin_notes"] = optional(*p.AdminNotes)
	}
	if p.AssignedTo != nil {
		updates["assigned_to"] = optional(*p.AssignedTo)
	}
	if p.EstimatedDelivery != nil {
		if t, err := time.Parse(dateLayout, *p.EstimatedDelivery); err == nil {
			d := datatypes.Date(t)
			updates["estimated_delivery"] = &d
		} else {
			updates["estimated_delivery"] = nil
		}
	}
	if p.PaymentStatus != nil {
		updates["payment_status"] = string(*p.PaymentStatus)
	}
	if p.PaymentTxRef != nil {
		updates["payment_tx_ref"] = optional(*p.PaymentTxRef)
	}
	if p.PaymentAmount != nil {
		updates["payment_amount"] = *p.PaymentAmount
	}
	if p.PaidAt != nil {
		updates["paid_at"] = *p.PaidAt
	}

	return updates
}

// Fields lists the wire names of the fields the patch sets, for logs and events.
func (p Patch) Fields() []string {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}
