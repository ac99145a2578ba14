package submissionsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"auraweb-intake/config"
	"auraweb-intake/database"
	"auraweb-intake/internal/app/http/middleware"
	"auraweb-intake/internal/api/uploads"
	"auraweb-intake/internal/domain/media"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/infra/events"
	"auraweb-intake/internal/infra/mail"
	"auraweb-intake/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxIntakeUpload = 32 << 20

// GET /api/submissions
func ListSubmissions(c *gin.Context) {
	list, err := submissions.List(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submissions"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/submissions/:id
func GetSubmission(c *gin.Context) {
	rec, err := submissions.Get(database.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}
	c.JSON(http.StatusOK, rec.ToSubmission())
}

// POST /api/submissions
//
// Accepts either a JSON body or multipart with a "data" JSON part and any
// number of "files" parts, which are stored and appended to imageUrls.
func CreateSubmission(c *gin.Context) {
	var in submissions.Submission
	var stored []media.Image

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(maxIntakeUpload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad multipart form"})
			return
		}
		raw := c.Request.FormValue("data")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data field"})
			return
		}
		clean, err := middleware.SanitizeJSON([]byte(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON in data field"})
			return
		}
		if err := json.Unmarshal(clean, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := normalizeIncoming(&in, time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if _, err := submissions.Get(database.DB, in.ID); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Submission already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Submission lookup failed", "id", in.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save submission"})
			return
		}

		stored, err = uploads.StoreFormFiles(c, "files", &in.ID)
		if err != nil {
			if uploads.IsRejected(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("Intake upload failed", "id", in.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded files"})
			return
		}
		for _, img := range stored {
			in.ImageURLs = append(in.ImageURLs, img.URL)
		}
	} else {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := normalizeIncoming(&in, time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	created, err := submissions.Insert(database.DB, in)
	if err != nil {
		uploads.Discard(c.Request.Context(), stored)
		if errors.Is(err, submissions.ErrDuplicateID) {
			c.JSON(http.StatusConflict, gin.H{"error": "Submission already exists"})
			return
		}
		slog.Error("Submission insert failed", "id", in.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save submission"})
		return
	}

	metrics.SubmissionsCreated.Inc()
	events.Emit(c.Request.Context(), events.SubjectSubmissionCreated, events.SubmissionEvent{
		SubmissionID: created.ID,
		BusinessName: created.BusinessName,
		PackageID:    created.PackageID,
		Status:       string(created.Status),
		At:           created.SubmittedAt,
	})
	go mail.NotifySubmission(created, config.ADMIN_EMAIL, config.APP_URL)

	slog.Info("Submission created", "id", created.ID, "package", created.PackageID)
	c.JSON(http.StatusCreated, created)
}

// normalizeIncoming enforces what the server owns regardless of what the
// client sent: identifier, creation time, initial status and a known package.
func normalizeIncoming(s *submissions.Submission, now time.Time) error {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if len(s.ID) > 64 {
		return fmt.Errorf("id too long")
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = now
	}
	s.Status = submissions.InitialStatus
	s.Payment = nil
	s.AdminNotes = nil
	s.AssignedTo = nil
	s.EstimatedDelivery = nil

	if _, ok := submissions.LookupPackage(s.PackageID); !ok {
		return fmt.Errorf("unknown package %q", s.PackageID)
	}
	if strings.TrimSpace(s.BusinessName) == "" {
		return fmt.Errorf("businessName is required")
	}
	s.Services = submissions.SanitizeServices(s.Services)
	return nil
}

// PATCH /api/submissions/:id[?override=true]
func UpdateSubmission(c *gin.Context) {
	var p submissions.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.StatusOverride = c.Query("override") == "true"

	change, err := Commit(c.Request.Context(), database.DB, c.Param("id"), p)
	if err != nil {
		status, msg := patchErrorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, change.After)
}

func patchErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Submission not found"
	case errors.Is(err, submissions.ErrIllegalTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, submissions.ErrEmptyPatch), errors.Is(err, submissions.ErrInvalidPatch):
		return http.StatusBadRequest, err.Error()
	default:
		slog.Error("Submission update failed", "error", err)
		return http.StatusInternalServerError, "Failed to update submission"
	}
}
