package submissionsapi

import (
	"context"
	"log/slog"
	"time"

	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/infra/events"
	"auraweb-intake/internal/infra/metrics"

	"gorm.io/gorm"
)

// Commit is the single write path for existing submissions: admin edits,
// payment links, payment verification and webhooks all land here.
func Commit(ctx context.Context, db *gorm.DB, id string, p submissions.Patch) (submissions.Change, error) {
	change, err := submissions.ApplyPatch(db, id, p)
	if err != nil {
		return change, err
	}

	if change.StatusChanged() {
		metrics.StatusChanges.WithLabelValues(string(change.After.Status)).Inc()
	}

	events.Emit(ctx, events.SubjectSubmissionUpdated, events.SubmissionEvent{
		SubmissionID:   id,
		BusinessName:   change.After.BusinessName,
		PackageID:      change.After.PackageID,
		Status:         string(change.After.Status),
		PreviousStatus: string(change.Before.Status),
		Fields:         change.Fields,
		At:             time.Now(),
	})

	slog.Info("Submission updated",
		"id", id,
		"fields", change.Fields,
		"status", change.After.Status,
		"previous_status", change.Before.Status,
	)
	return change, nil
}
