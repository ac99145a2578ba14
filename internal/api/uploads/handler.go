package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/media"
	"auraweb-intake/internal/infra/blob"
	"auraweb-intake/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // per file

var allowedExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true,
	".pdf": true,
}

// POST /api/upload (multipart, field "file")
func UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}

	img, err := Store(c.Request.Context(), fh, nil)
	if err != nil {
		if IsRejected(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Upload failed", "filename", fh.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": img.URL, "id": img.ID})
}

type rejectedError struct{ msg string }

func (e rejectedError) Error() string { return e.msg }

// IsRejected reports whether err is a client-side problem (size, type).
func IsRejected(err error) bool {
	_, ok := err.(rejectedError)
	return ok
}

// Check rejects files that are too large or of a type we do not keep.
func Check(fh *multipart.FileHeader) error {
	if fh.Size > maxUploadSize {
		return rejectedError{fmt.Sprintf("%s is larger than %d MB", fh.Filename, maxUploadSize>>20)}
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return rejectedError{fmt.Sprintf("file type %q not allowed", ext)}
	}
	return nil
}

// Store writes one multipart file to the blob store and records it.
func Store(ctx context.Context, fh *multipart.FileHeader, submissionID *string) (media.Image, error) {
	if blob.Default == nil {
		return media.Image{}, fmt.Errorf("blob store not configured")
	}
	if err := Check(fh); err != nil {
		return media.Image{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return media.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := blob.Default.Put(ctx, fh.Filename, contentType, f)
	if err != nil {
		return media.Image{}, err
	}

	img := media.Image{
		ID:           uuid.NewString(),
		ObjectKey:    obj.Key,
		URL:          obj.URL,
		ContentType:  obj.ContentType,
		Size:         obj.Size,
		SubmissionID: submissionID,
	}
	if err := database.DB.Create(&img).Error; err != nil {
		// the file is stored; losing the ledger row only loses bookkeeping
		slog.Warn("Upload ledger insert failed", "key", obj.Key, "error", err)
	}
	metrics.Uploads.Inc()
	return img, nil
}

// StoreFormFiles stores every file under field, in order. All files are
// checked before any is written, and a failure part way removes the ones
// already stored.
func StoreFormFiles(c *gin.Context, field string, submissionID *string) ([]media.Image, error) {
	form := c.Request.MultipartForm
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	files := form.File[field]
	for _, fh := range files {
		if err := Check(fh); err != nil {
			return nil, err
		}
	}
	ctx := c.Request.Context()
	imgs := make([]media.Image, 0, len(files))
	for _, fh := range files {
		img, err := Store(ctx, fh, submissionID)
		if err != nil {
			Discard(ctx, imgs)
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// Discard removes stored uploads and their ledger rows. Failures are
// logged; the caller is already on an error path.
func Discard(ctx context.Context, imgs []media.Image) {
	for _, img := range imgs {
		if blob.Default != nil {
			if err := blob.Default.Delete(ctx, img.ObjectKey); err != nil {
				slog.Warn("Upload cleanup failed", "key", img.ObjectKey, "error", err)
			}
		}
		if err := database.DB.Delete(&media.Image{}, "id = ?", img.ID).Error; err != nil {
			slog.Warn("Upload ledger cleanup failed", "id", img.ID, "error", err)
		}
	}
}
