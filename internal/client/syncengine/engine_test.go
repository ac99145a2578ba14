package syncengine

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"auraweb-intake/internal/client/localcache"
	"auraweb-intake/internal/client/session"
	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/domain/submissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu        sync.Mutex
	list      []submissions.Submission
	listErr   error
	createErr error
	updateErr error

	listGate   chan struct{}
	updateGate chan struct{}
	entered    chan struct{}

	creates []int
	patches []submissions.Patch
}

func (f *fakeRemote) ListSubmissions(context.Context) ([]submissions.Submission, error) {
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneAll(f.list), nil
}

func (f *fakeRemote) CreateSubmission(_ context.Context, s submissions.Submission, files []storeapi.Attachment) (submissions.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, len(files))
	if f.createErr != nil {
		return submissions.Submission{}, f.createErr
	}
	for _, a := range files {
		s.ImageURLs = append(s.ImageURLs, "https://files.test/"+a.Filename)
	}
	f.list = append([]submissions.Submission{s}, f.list...)
	return s, nil
}

func (f *fakeRemote) UpdateSubmission(_ context.Context, id string, p submissions.Patch) (submissions.Submission, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.updateGate != nil {
		<-f.updateGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, p)
	if f.updateErr != nil {
		return submissions.Submission{}, f.updateErr
	}
	for i := range f.list {
		if f.list[i].ID == id {
			p.ApplyTo(&f.list[i])
			return f.list[i].Clone(), nil
		}
	}
	return submissions.Submission{}, &storeapi.APIError{StatusCode: http.StatusNotFound, Message: "Submission not found"}
}

func sub(id, name string) submissions.Submission {
	return submissions.Submission{
		ID:           id,
		SubmittedAt:  time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Status:       submissions.StatusSubmitted,
		PackageID:    submissions.PackageBusiness,
		BusinessName: name,
		Phone:        "0911000111",
		Services:     []string{},
		SocialLinks:  map[string]string{},
		ImageURLs:    submissions.MediaRefs{},
	}
}

func openCache(t *testing.T) *localcache.Cache {
	t.Helper()
	c, err := localcache.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func cached(t *testing.T, c *localcache.Cache) []submissions.Submission {
	t.Helper()
	list, ok, err := c.ReadSubmissions(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return list
}

func synced(t *testing.T, remote *fakeRemote, cache Cache, sess Session) *Engine {
	t.Helper()
	e := New(remote, cache, sess, nil)
	require.NoError(t, e.Refresh(context.Background()))
	require.Equal(t, Synced, e.Phase())
	return e
}

func TestLoad_HydratesFromCacheThenRefreshes(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	require.NoError(t, cache.WriteSubmissions(ctx, []submissions.Submission{sub("old", "Old Cafe")}))

	remote := &fakeRemote{
		list:     []submissions.Submission{sub("a", "Alpha"), sub("b", "Beta")},
		listGate: make(chan struct{}),
	}
	e := New(remote, cache, nil, nil)
	assert.Equal(t, Uninitialized, e.Phase())

	done := e.Load(ctx)
	assert.Equal(t, Hydrating, e.Phase())
	require.Len(t, e.Snapshot(), 1)
	assert.Equal(t, "old", e.Snapshot()[0].ID)

	close(remote.listGate)
	require.NoError(t, <-done)

	assert.Equal(t, Synced, e.Phase())
	got := e.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, got, cached(t, cache))
}

func TestHydrate_IgnoresCorruptCache(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	require.NoError(t, cache.Put(ctx, localcache.KeySubmissions, []byte("garbage")))

	e := New(&fakeRemote{}, cache, nil, nil)
	e.Hydrate(ctx)
	assert.Empty(t, e.Snapshot())
	assert.Equal(t, Hydrating, e.Phase())
}

func TestRefresh_FailureKeepsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil, nil)
	require.NoError(t, sess.Set(ctx, "tok"))
	remote := &fakeRemote{list: []submissions.Submission{sub("a", "Alpha"), sub("b", "Beta")}}
	e := synced(t, remote, nil, sess)
	want := e.Snapshot()

	remote.listErr = errors.New("dial tcp: connection refused")
	err := e.Refresh(ctx)
	require.Error(t, err)

	assert.Equal(t, Stale, e.Phase())
	assert.Equal(t, want, e.Snapshot())
	assert.Error(t, e.LastError())
	assert.True(t, sess.Authenticated(), "generic failure keeps the credential")

	remote.listErr = nil
	require.NoError(t, e.Refresh(ctx))
	assert.Equal(t, Synced, e.Phase())
	assert.NoError(t, e.LastError())
}

func TestRefresh_UnauthorizedDropsSession(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil, nil)
	require.NoError(t, sess.Set(ctx, "expired"))
	remote := &fakeRemote{list: []submissions.Submission{sub("a", "Alpha")}}
	e := synced(t, remote, nil, sess)

	remote.listErr = &storeapi.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid or expired token"}
	err := e.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeapi.ErrUnauthorized)

	assert.False(t, sess.Authenticated())
	assert.Len(t, e.Snapshot(), 1)
	assert.Equal(t, Stale, e.Phase())
}

func TestUpdate_VisibleBeforeStoreAnswers(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	remote := &fakeRemote{
		list:       []submissions.Submission{sub("a", "Alpha")},
		updateGate: make(chan struct{}),
		entered:    make(chan struct{}),
	}
	e := synced(t, remote, cache, nil)

	completed := submissions.StatusCompleted
	result := make(chan error, 1)
	go func() {
		_, err := e.Update(ctx, "a", submissions.Patch{Status: &completed})
		result <- err
	}()

	<-remote.entered
	got, ok := e.Get("a")
	require.True(t, ok)
	assert.Equal(t, submissions.StatusCompleted, got.Status)
	assert.Equal(t, submissions.StatusCompleted, cached(t, cache)[0].Status)

	close(remote.updateGate)
	require.NoError(t, <-result)

	got, _ = e.Get("a")
	assert.Equal(t, submissions.StatusCompleted, got.Status)
	assert.Equal(t, submissions.StatusCompleted, cached(t, cache)[0].Status)
}

func TestUpdate_RevertsOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	a := sub("a", "Alpha")
	note := "first call done"
	a.AdminNotes = &note
	remote := &fakeRemote{list: []submissions.Submission{a, sub("b", "Beta")}}
	e := synced(t, remote, cache, nil)
	before := e.Snapshot()

	remote.updateErr = errors.New("502 bad gateway")
	status := submissions.StatusInProgress
	newNote := "kickoff"
	_, err := e.Update(ctx, "a", submissions.Patch{Status: &status, AdminNotes: &newNote})

	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "a", rerr.ID)
	assert.ElementsMatch(t, []string{"adminNotes", "status"}, rerr.Fields)

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, before, cached(t, cache))
}

func TestUpdate_UnauthorizedRevertsAndDropsSession(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil, nil)
	require.NoError(t, sess.Set(ctx, "tok"))
	remote := &fakeRemote{list: []submissions.Submission{sub("a", "Alpha")}}
	e := synced(t, remote, nil, sess)

	remote.updateErr = &storeapi.APIError{StatusCode: http.StatusForbidden, Message: "Forbidden"}
	status := submissions.StatusReviewed
	_, err := e.Update(ctx, "a", submissions.Patch{Status: &status})
	assert.ErrorIs(t, err, storeapi.ErrUnauthorized)
	assert.False(t, sess.Authenticated())

	got, _ := e.Get("a")
	assert.Equal(t, submissions.StatusSubmitted, got.Status)
}

func TestUpdate_UnknownAndEmpty(t *testing.T) {
	remote := &fakeRemote{list: []submissions.Submission{sub("a", "Alpha")}}
	e := synced(t, remote, nil, nil)

	note := "x"
	_, err := e.Update(context.Background(), "zzz", submissions.Patch{AdminNotes: &note})
	assert.ErrorIs(t, err, ErrUnknownSubmission)

	_, err = e.Update(context.Background(), "a", submissions.Patch{})
	assert.ErrorIs(t, err, submissions.ErrEmptyPatch)
	assert.Empty(t, remote.patches)
}

func TestCreate_OnlyAfterStoreAccepts(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	remote := &fakeRemote{list: []submissions.Submission{sub("a", "Alpha")}}
	e := synced(t, remote, cache, nil)

	remote.createErr = errors.New("timeout")
	_, err := e.Create(ctx, sub("new", "Newcomer"), nil)
	require.Error(t, err)
	assert.Len(t, e.Snapshot(), 1)

	remote.createErr = nil
	created, err := e.Create(ctx, sub("new", "Newcomer"), []storeapi.Attachment{{Filename: "logo.png", Content: []byte("x")}})
	require.NoError(t, err)
	assert.Equal(t, submissions.MediaRefs{"https://files.test/logo.png"}, created.ImageURLs)

	got := e.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, got, cached(t, cache))
}
