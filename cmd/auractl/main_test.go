package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auraweb-intake/database"
	routes "auraweb-intake/internal/app/http"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t     *testing.T
	api   string
	state string
}

func newCLI(t *testing.T) cli {
	t.Helper()
	db := testutil.UseDB(t)
	testutil.UseJWTSecret(t)
	testutil.UseBlob(t)
	require.NoError(t, database.SeedBootstrapAdmin(db, "admin", "aura2026web"))
	testutil.SeedSubmission(t, db, "tomoca", func(s *submissions.Submission) { s.Email = nil })

	r := testutil.NewRouter()
	routes.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return cli{t: t, api: srv.URL, state: filepath.Join(t.TempDir(), "state.db")}
}

// run executes one auractl invocation; every call reopens the state file
// the way separate processes would.
func (c cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", c.api, "--state", c.state}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

func (c cli) login() {
	c.t.Helper()
	out, err := c.run("aura2026web\n", "login", "-u", "admin", "--password-stdin")
	require.NoError(c.t, err)
	require.Contains(c.t, out, "Logged in as admin")
}

func TestCLI_RequiresLogin(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "list")
	assert.ErrorIs(t, err, errLoginFirst)

	_, err = c.run("wrong-pass\n", "login", "-u", "admin", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, err = c.run("", "login", "-u", "admin")
	assert.Error(t, err)
}

func TestCLI_InvalidFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "--format", "yaml", "lang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCLI_ManageSubmissions(t *testing.T) {
	c := newCLI(t)
	c.login()

	out := c.mustRun("list")
	assert.Contains(t, out, "tomoca")
	assert.Contains(t, out, "Tomoca Coffee")

	out = c.mustRun("status", "tomoca", "In Progress")
	assert.Equal(t, "tomoca is now In Progress\n", out)

	_, err := c.run("", "status", "tomoca", "Reviewed")
	assert.ErrorIs(t, err, submissions.ErrIllegalTransition)

	out = c.mustRun("status", "tomoca", "Reviewed", "--override")
	assert.Contains(t, out, "Reviewed")

	out = c.mustRun("note", "tomoca", "kickoff call booked")
	assert.Contains(t, out, "Notes saved")

	var got submissions.Submission
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("show", "tomoca")), &got))
	assert.Equal(t, submissions.StatusReviewed, got.Status)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "kickoff call booked", *got.AdminNotes)

	var filtered []submissions.Submission
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("--format", "json", "list", "--status", "Completed")), &filtered))
	assert.Empty(t, filtered)

	out = c.mustRun("stats")
	assert.Contains(t, out, "total")
}

func TestCLI_SubmitDraft(t *testing.T) {
	c := newCLI(t)

	draft := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(draft, []byte(`
packageId: starter
businessName: Corner Bakery
phone: "+251 911 222 333"
services: [Bread, "  ", Cakes]
`), 0o600))

	_, err := c.run("", "submit")
	assert.Error(t, err)

	var preview submissions.Submission
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("submit", "-f", draft, "--dry-run")), &preview))
	assert.Equal(t, "Corner Bakery", preview.BusinessName)
	assert.Equal(t, []string{"Bread", "Cakes"}, preview.Services)

	out := c.mustRun("submit", "-f", draft)
	assert.Contains(t, out, "for Corner Bakery (0 files)")

	c.login()
	out = c.mustRun("list", "--search", "corner")
	assert.Contains(t, out, "Corner Bakery")
	assert.NotContains(t, out, "Tomoca Coffee")

	id := strings.Fields(strings.TrimPrefix(c.mustRun("submit", "-f", draft), "Submitted "))[0]
	out = c.mustRun("track", id, "+251911222333")
	assert.Contains(t, out, "Corner Bakery")
	assert.Contains(t, out, "[current] Submitted")
}

func TestCLI_Portfolio(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "portfolio", "add", "--title", "Corner Bakery", "--url", "https://cornerbakery.et")
	assert.ErrorIs(t, err, errLoginFirst)

	c.login()
	out := c.mustRun("portfolio", "add", "--title", "Corner Bakery", "--category", "Food", "--url", "https://cornerbakery.et")
	assert.Equal(t, "Added 1 Corner Bakery\n", out)

	_, err = c.run("", "portfolio", "add", "--title", "No link")
	assert.Error(t, err)

	out = c.mustRun("portfolio", "list")
	assert.Contains(t, out, "https://cornerbakery.et")

	c.mustRun("portfolio", "rm", "1")
	out = c.mustRun("--format", "json", "portfolio", "list")
	assert.JSONEq(t, "[]", out)

	_, err = c.run("", "portfolio", "rm", "one")
	assert.Error(t, err)
}

func TestCLI_LanguageAndLogout(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, "en\n", c.mustRun("lang"))
	assert.Contains(t, c.mustRun("lang", "am"), "am")
	assert.Equal(t, "am\n", c.mustRun("lang"))

	_, err := c.run("", "lang", "xx-unknown")
	assert.Error(t, err)

	_, err = c.run("", "whoami")
	assert.ErrorIs(t, err, errLoginFirst)

	c.login()
	c.mustRun("list")
	assert.Contains(t, c.mustRun("whoami"), "admin (admin, ")
	assert.Contains(t, c.mustRun("logout"), "Logged out")

	_, err = c.run("", "list")
	assert.ErrorIs(t, err, errLoginFirst)
}
