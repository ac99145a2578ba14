// Package localcache is the device-local durable key/value store backing the
// client: the last submissions snapshot, the admin token and the UI language.
package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auraweb-intake/internal/domain/submissions"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/language"
)

const (
	KeySubmissions = "submissions"
	KeyAdminToken  = "admin_token"
	KeyLanguage    = "language"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// ErrCorrupt wraps snapshots that exist but cannot be decoded.
var ErrCorrupt = errors.New("localcache: corrupt entry")

// Supported UI languages.
var supportedLanguages = []language.Tag{language.English, language.Amharic}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Cache is safe for concurrent use; sqlite serializes the writes.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the cache file at path. ":memory:" works for tests.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect cache: %w", err)
	}

	// one connection keeps an in-memory database alive and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}
	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the stored value and whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Put replaces the value under key. A single statement, so readers see the
// old value or the new one and never a mix.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, c.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// ReadSubmissions returns the last written snapshot. ok is false when
// nothing was ever written.
func (c *Cache) ReadSubmissions(ctx context.Context) (list []submissions.Submission, ok bool, err error) {
	raw, found, err := c.Get(ctx, KeySubmissions)
	if err != nil || !found {
		return nil, false, err
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, KeySubmissions, err)
	}
	if list == nil {
		list = []submissions.Submission{}
	}
	return list, true, nil
}

// WriteSubmissions replaces the whole snapshot.
func (c *Cache) WriteSubmissions(ctx context.Context, list []submissions.Submission) error {
	if list == nil {
		list = []submissions.Submission{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.Put(ctx, KeySubmissions, raw)
}

// Language returns the stored UI language, English when unset or unreadable.
func (c *Cache) Language(ctx context.Context) (language.Tag, error) {
	raw, ok, err := c.Get(ctx, KeyLanguage)
	if err != nil {
		return language.English, err
	}
	if !ok {
		return language.English, nil
	}
	tag, err := language.Parse(string(raw))
	if err != nil {
		return language.English, nil
	}
	return tag, nil
}

// SetLanguage stores the closest supported match for tag.
func (c *Cache) SetLanguage(ctx context.Context, raw string) (language.Tag, error) {
	want, err := language.Parse(raw)
	if err != nil {
		return language.Und, fmt.Errorf("unknown language %q: %w", raw, err)
	}
	_, idx, conf := languageMatcher.Match(want)
	if conf == language.No {
		return language.Und, fmt.Errorf("unsupported language %q", raw)
	}
	tag := supportedLanguages[idx]
	if err := c.Put(ctx, KeyLanguage, []byte(tag.String())); err != nil {
		return language.Und, err
	}
	return tag, nil
}
