package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"auraweb-intake/internal/client/admin"
	"auraweb-intake/internal/client/localcache"
	"auraweb-intake/internal/client/session"
	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/client/syncengine"
)

var validFormats = []string{"text", "json"}

type rootOptions struct {
	APIURL   string
	StateDB  string
	LogLevel string
	Format   string
}

func (o *rootOptions) validate() error {
	for _, f := range validFormats {
		if f == o.Format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %v", o.Format, validFormats)
}

// app is everything one command invocation needs, wired from rootOptions.
type app struct {
	log     *slog.Logger
	cache   *localcache.Cache
	session *session.Session
	api     *storeapi.Client
	engine  *syncengine.Engine
	console *admin.Console
}

func (o *rootOptions) open(ctx context.Context) (*app, error) {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(o.LogLevel)}))

	if dir := filepath.Dir(o.StateDB); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	cache, err := localcache.Open(o.StateDB)
	if err != nil {
		return nil, err
	}
	sess, err := session.Restore(ctx, cache, log)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	api := storeapi.New(o.APIURL, sess)
	engine := syncengine.New(api, cache, sess, log)
	return &app{
		log:     log,
		cache:   cache,
		session: sess,
		api:     api,
		engine:  engine,
		console: admin.New(api, engine, sess, log),
	}, nil
}

func (a *app) Close() error { return a.cache.Close() }

// load shows cached data when the store cannot be reached, and says so.
func (a *app) load(ctx context.Context, w io.Writer) error {
	if !a.session.Authenticated() {
		return errLoginFirst
	}
	err := <-a.engine.Load(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, storeapi.ErrUnauthorized) {
		return errLoginFirst
	}
	fmt.Fprintf(w, "warning: store unreachable, showing cached data (%s)\n", storeapi.Message(err))
	return nil
}

var errLoginFirst = errors.New("not logged in (run: auractl login)")

// friendly maps the console's auth errors to one hint.
func friendly(err error) error {
	if errors.Is(err, admin.ErrNotAuthenticated) || errors.Is(err, storeapi.ErrUnauthorized) {
		return errLoginFirst
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "auractl.db"
	}
	return filepath.Join(dir, "auractl", "state.db")
}
