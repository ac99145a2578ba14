package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Object is a stored upload and its public, absolute URL.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Store holds uploads. Delete of a missing key is not an error.
type Store interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (Object, error)
	Delete(ctx context.Context, key string) error
}

// Default is the store the upload handlers write to. main sets it.
var Default Store

// ObjectKey builds a collision-free key that keeps the uploaded extension.
func ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if len(ext) > 10 {
		ext = ""
	}
	return "uploads/" + uuid.NewString() + ext
}

/* ---------------- local disk ---------------- */

type Local struct {
	Dir     string
	BaseURL string // public origin, e.g. https://api.example.com
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Put(_ context.Context, filename, contentType string, r io.Reader) (Object, error) {
	key := ObjectKey(filename)
	name := strings.TrimPrefix(key, "uploads/")

	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return Object{}, fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return Object{}, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst.Name())
		return Object{}, fmt.Errorf("save file: %w", err)
	}

	return Object{
		Key:         key,
		URL:         l.BaseURL + "/" + key,
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.Base(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file %s: %w", key, err)
	}
	return nil
}

/* ---------------- google cloud storage ---------------- */

type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Put(ctx context.Context, filename, contentType string, r io.Reader) (Object, error) {
	key := ObjectKey(filename)

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return Object{}, fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("gcs close %s: %w", key, err)
	}

	return Object{
		Key:         key,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key),
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// FromConfig picks GCS when a bucket is configured and local disk otherwise.
func FromConfig(ctx context.Context, bucket, dir, baseURL string) (Store, error) {
	if bucket != "" {
		return NewGCS(ctx, bucket)
	}
	return NewLocal(dir, baseURL), nil
}
