// Package intake drives the customer intake flow: five steps collecting a
// draft, then a finalized Submission handed to the sync engine.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/domain/submissions"

	"github.com/google/uuid"
)

// Steps of the flow, in order.
const (
	StepPackage = iota + 1
	StepBusiness
	StepContent
	StepDesign
	StepReview

	FirstStep = StepPackage
	LastStep  = StepReview
)

// Placeholders used by Finalize for fields left blank.
const (
	Placeholder         = "N/A"
	FallbackPackage     = submissions.PackageStarter
	FallbackType        = "Other"
	FallbackLanguage    = "English"
	FallbackColor       = "#000000"
	FallbackTheme       = "Modern & Clean"
	DefaultBusinessType = "Company"
	DefaultColor        = "#1e40af"
)

var (
	ErrUnknownField = errors.New("intake: unknown field")
	ErrFieldType    = errors.New("intake: wrong value type")
	ErrNotOnReview  = errors.New("intake: submit is only possible from the review step")
)

// Creator receives finalized submissions. *syncengine.Engine satisfies it.
type Creator interface {
	Create(ctx context.Context, s submissions.Submission, files []storeapi.Attachment) (submissions.Submission, error)
}

type Form struct {
	step        int
	draft       Draft
	id          string
	attachments []storeapi.Attachment

	creator Creator
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewForm(creator Creator, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{
		step:    FirstStep,
		draft:   NewDraft(),
		creator: creator,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (f *Form) Step() int { return f.step }

// Advance moves one step forward, stopping at the review step.
func (f *Form) Advance() int {
	if f.step < LastStep {
		f.step++
	}
	return f.step
}

// Retreat moves one step back, stopping at the first step.
func (f *Form) Retreat() int {
	if f.step > FirstStep {
		f.step--
	}
	return f.step
}

// Draft returns a copy of the in-progress draft.
func (f *Form) Draft() Draft { return f.draft.clone() }

// UpdateField sets one draft field by its wire name. Text fields take a
// string or a number/bool scalar. Lists accept []string or []any of
// strings, maps accept map[string]string or map[string]any.
func (f *Form) UpdateField(name string, value any) error {
	set, ok := fieldSetters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := set(&f.draft, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Attach queues a file to be sent with the submission.
func (f *Form) Attach(a storeapi.Attachment) {
	f.attachments = append(f.attachments, a)
}

func (f *Form) Attachments() int { return len(f.attachments) }

// Finalize builds the record to submit. The identifier is generated once
// and kept, so a retried submit reuses it. Image references stay empty
// until the store has stored the attachments.
func (f *Form) Finalize() submissions.Submission {
	if f.id == "" {
		f.id = f.newID()
	}
	d := f.draft

	pkg := orDefault(d.PackageID, FallbackPackage)
	s := submissions.Submission{
		ID:           f.id,
		SubmittedAt:  f.now().UTC(),
		Status:       submissions.InitialStatus,
		PackageID:    pkg,
		BusinessName: orDefault(d.BusinessName, Placeholder),
		BusinessType: orDefault(d.BusinessType, FallbackType),
		Phone:        orDefault(d.Phone, Placeholder),
		Email:        optional(d.Email),
		Address:      orDefault(d.Address, Placeholder),

		GoogleMapsLink: optional(d.GoogleMapsLink),
		AboutUs:        strings.TrimSpace(d.AboutUs),
		Services:       submissions.SanitizeServices(d.Services),
		WorkingHours:   strings.TrimSpace(d.WorkingHours),
		SocialLinks:    cleanLinks(d.SocialLinks),

		Language:     orDefault(d.Language, FallbackLanguage),
		PrimaryColor: orDefault(d.PrimaryColor, FallbackColor),
		ThemeStyle:   orDefault(d.ThemeStyle, FallbackTheme),
		SpecialNotes: optional(d.SpecialNotes),

		ImageURLs:     submissions.MediaRefs{},
		DepositAmount: submissions.DepositAmount(pkg),
	}
	return s
}

// Submit finalizes the draft and hands it with the attachments to the
// creator. Failures are returned as they are; the form stays on the review
// step so the user can submit again.
func (f *Form) Submit(ctx context.Context) (submissions.Submission, error) {
	if f.step != LastStep {
		return submissions.Submission{}, ErrNotOnReview
	}
	s := f.Finalize()

	created, err := f.creator.Create(ctx, s, f.attachments)
	if err != nil {
		f.log.Warn("intake submit failed", "id", s.ID, "error", err)
		return submissions.Submission{}, err
	}
	f.attachments = nil
	f.log.Info("intake submitted", "id", created.ID, "package", created.PackageID)
	return created, nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func optional(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

func cleanLinks(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
