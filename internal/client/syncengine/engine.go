// Package syncengine keeps the client's view of submissions in step with
// the local cache and the Submission Store.
//
// Reads hydrate from the cache first and then refresh from the store.
// Updates are optimistic: the change is visible and cached before the store
// answers. When the store rejects an update the touched fields are put back
// the way they were (revert-on-failure) and a *RemoteError is returned.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/domain/submissions"
)

var ErrUnknownSubmission = errors.New("syncengine: unknown submission")

type Phase int

const (
	Uninitialized Phase = iota
	Hydrating
	Synced
	Stale
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Hydrating:
		return "hydrating"
	case Synced:
		return "synced"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Remote is the slice of the store API the engine needs. *storeapi.Client
// satisfies it.
type Remote interface {
	ListSubmissions(ctx context.Context) ([]submissions.Submission, error)
	CreateSubmission(ctx context.Context, s submissions.Submission, files []storeapi.Attachment) (submissions.Submission, error)
	UpdateSubmission(ctx context.Context, id string, p submissions.Patch) (submissions.Submission, error)
}

// Cache is the durable snapshot slot. *localcache.Cache satisfies it.
type Cache interface {
	ReadSubmissions(ctx context.Context) ([]submissions.Submission, bool, error)
	WriteSubmissions(ctx context.Context, list []submissions.Submission) error
}

// Session is dropped when the store rejects the credential.
type Session interface {
	Invalidate(ctx context.Context) error
}

// RemoteError reports an optimistic update the store refused. By the time
// it is returned the local state and the cache hold the pre-update values.
type RemoteError struct {
	ID     string
	Fields []string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("update %s reverted: %v", e.ID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

type Engine struct {
	remote  Remote
	cache   Cache
	session Session
	log     *slog.Logger

	mu      sync.Mutex
	phase   Phase
	items   []submissions.Submission
	lastErr error
}

// New wires an engine. cache and session may be nil.
func New(remote Remote, cache Cache, session Session, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{remote: remote, cache: cache, session: session, log: log}
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// LastError is the error of the last failed refresh, nil once synced again.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Snapshot returns a deep copy of the in-memory list.
func (e *Engine) Snapshot() []submissions.Submission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAll(e.items)
}

func (e *Engine) Get(id string) (submissions.Submission, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(id); i >= 0 {
		return e.items[i].Clone(), true
	}
	return submissions.Submission{}, false
}

// Load hydrates from the cache synchronously and refreshes from the store
// in the background. The channel yields the refresh result once and closes.
func (e *Engine) Load(ctx context.Context) <-chan error {
	e.Hydrate(ctx)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.Refresh(ctx)
	}()
	return done
}

// Hydrate fills the in-memory list from the cache. A missing or unreadable
// snapshot leaves the list as it is.
func (e *Engine) Hydrate(ctx context.Context) {
	e.mu.Lock()
	if e.phase == Uninitialized {
		e.phase = Hydrating
	}
	e.mu.Unlock()

	if e.cache == nil {
		return
	}
	list, ok, err := e.cache.ReadSubmissions(ctx)
	if err != nil {
		e.log.Warn("ignoring cached submissions", "error", err)
		return
	}
	if !ok {
		return
	}

	e.mu.Lock()
	// a refresh that already landed is newer than the cache
	if e.phase == Hydrating {
		e.items = list
	}
	e.mu.Unlock()
	e.log.Debug("hydrated from cache", "count", len(list))
}

// Refresh replaces the list and the cache with the store's list. On failure
// the current list stays as it is and the engine goes Stale; an
// authorization failure also invalidates the session.
func (e *Engine) Refresh(ctx context.Context) error {
	list, err := e.remote.ListSubmissions(ctx)
	if err != nil {
		e.mu.Lock()
		e.phase = Stale
		e.lastErr = err
		e.mu.Unlock()

		if errors.Is(err, storeapi.ErrUnauthorized) {
			e.dropSession(ctx)
		}
		e.log.Warn("refresh failed, keeping last snapshot", "error", err)
		return fmt.Errorf("refresh: %w", err)
	}

	e.mu.Lock()
	e.items = cloneAll(list)
	e.phase = Synced
	e.lastErr = nil
	snap := cloneAll(e.items)
	e.mu.Unlock()

	e.persist(ctx, snap)
	e.log.Debug("refreshed from store", "count", len(snap))
	return nil
}

// Create sends a finalized submission and its attachments. Nothing is
// added locally unless the store accepts it; the store's copy is prepended.
func (e *Engine) Create(ctx context.Context, s submissions.Submission, files []storeapi.Attachment) (submissions.Submission, error) {
	created, err := e.remote.CreateSubmission(ctx, s, files)
	if err != nil {
		return submissions.Submission{}, fmt.Errorf("create submission: %w", err)
	}

	e.mu.Lock()
	if i := e.indexOf(created.ID); i >= 0 {
		e.items = append(e.items[:i], e.items[i+1:]...)
	}
	e.items = append([]submissions.Submission{created.Clone()}, e.items...)
	snap := cloneAll(e.items)
	e.mu.Unlock()

	e.persist(ctx, snap)
	e.log.Info("submission created", "id", created.ID, "attachments", len(files))
	return created, nil
}

// Update applies p locally and to the cache, then sends it to the store.
func (e *Engine) Update(ctx context.Context, id string, p submissions.Patch) (submissions.Submission, error) {
	if p.IsEmpty() {
		return submissions.Submission{}, submissions.ErrEmptyPatch
	}

	e.mu.Lock()
	i := e.indexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return submissions.Submission{}, fmt.Errorf("%w: %s", ErrUnknownSubmission, id)
	}
	before := e.items[i].Clone()
	p.ApplyTo(&e.items[i])
	snap := cloneAll(e.items)
	e.mu.Unlock()

	e.persist(ctx, snap)

	saved, err := e.remote.UpdateSubmission(ctx, id, p)
	if err != nil {
		e.revert(ctx, id, p, before)
		if errors.Is(err, storeapi.ErrUnauthorized) {
			e.dropSession(ctx)
		}
		e.log.Warn("update rejected, reverted", "id", id, "fields", p.Fields(), "error", err)
		return submissions.Submission{}, &RemoteError{ID: id, Fields: p.Fields(), Err: err}
	}

	e.mu.Lock()
	if i := e.indexOf(id); i >= 0 {
		e.items[i] = saved.Clone()
	}
	snap = cloneAll(e.items)
	e.mu.Unlock()

	e.persist(ctx, snap)
	return saved, nil
}

func (e *Engine) revert(ctx context.Context, id string, p submissions.Patch, before submissions.Submission) {
	e.mu.Lock()
	i := e.indexOf(id)
	if i < 0 {
		// a refresh dropped it meanwhile
		e.mu.Unlock()
		return
	}
	p.Restore(&e.items[i], before)
	snap := cloneAll(e.items)
	e.mu.Unlock()

	e.persist(ctx, snap)
}

func (e *Engine) persist(ctx context.Context, snap []submissions.Submission) {
	if e.cache == nil {
		return
	}
	if err := e.cache.WriteSubmissions(ctx, snap); err != nil {
		e.log.Warn("cache write failed", "error", err)
	}
}

func (e *Engine) dropSession(ctx context.Context) {
	if e.session == nil {
		return
	}
	if err := e.session.Invalidate(ctx); err != nil {
		e.log.Warn("session invalidate failed", "error", err)
	}
}

// indexOf expects e.mu held.
func (e *Engine) indexOf(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(in []submissions.Submission) []submissions.Submission {
	out := make([]submissions.Submission, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
