package localcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"auraweb-intake/internal/domain/submissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func openTemp(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	c, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestGetPutDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := openTemp(t)

	_, ok, err := c.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, KeyAdminToken, []byte("tok-1")))
	require.NoError(t, c.Put(ctx, KeyAdminToken, []byte("tok-2")))
	v, ok, err := c.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", string(v))

	require.NoError(t, c.Delete(ctx, KeyAdminToken))
	_, ok, err = c.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmissionsSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	c, path := openTemp(t)

	_, ok, err := c.ReadSubmissions(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "absent snapshot")

	note := "call back"
	list := []submissions.Submission{{
		ID:           "a1",
		SubmittedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:       submissions.StatusReviewed,
		PackageID:    submissions.PackageDynamic,
		BusinessName: "Kaldi's",
		Services:     []string{"Coffee"},
		SocialLinks:  map[string]string{},
		ImageURLs:    submissions.MediaRefs{"https://cdn.test/a.png"},
		AdminNotes:   &note,
	}}
	require.NoError(t, c.WriteSubmissions(ctx, list))
	require.NoError(t, c.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	got, ok, err := again.ReadSubmissions(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, list, got)
}

func TestEmptySnapshotIsPresent(t *testing.T) {
	ctx := context.Background()
	c, _ := openTemp(t)

	require.NoError(t, c.WriteSubmissions(ctx, nil))
	got, ok, err := c.ReadSubmissions(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	c, _ := openTemp(t)

	require.NoError(t, c.Put(ctx, KeySubmissions, []byte("{not json")))
	_, ok, err := c.ReadSubmissions(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLanguage(t *testing.T) {
	ctx := context.Background()
	c, _ := openTemp(t)

	tag, err := c.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, language.English, tag)

	tag, err = c.SetLanguage(ctx, "am-ET")
	require.NoError(t, err)
	assert.Equal(t, "am", tag.String())

	tag, err = c.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, language.Amharic.String(), tag.String())

	_, err = c.SetLanguage(ctx, "not a tag!")
	assert.Error(t, err)
}
