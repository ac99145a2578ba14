package admin

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"auraweb-intake/database"
	routes "auraweb-intake/internal/app/http"
	"auraweb-intake/internal/client/session"
	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/client/syncengine"
	"auraweb-intake/internal/domain/portfolio"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type rig struct {
	db      *gorm.DB
	session *session.Session
	console *Console
}

// newRig wires the console to the real router over an in-memory database,
// seeded with two submissions.
func newRig(t *testing.T) rig {
	t.Helper()
	db := testutil.UseDB(t)
	testutil.UseJWTSecret(t)
	testutil.UseBlob(t)
	require.NoError(t, database.SeedBootstrapAdmin(db, "admin", "aura2026web"))

	testutil.SeedSubmission(t, db, "tomoca", func(s *submissions.Submission) { s.Email = nil })
	testutil.SeedSubmission(t, db, "kaldis", func(s *submissions.Submission) {
		s.Email = nil
		s.BusinessName = "Kaldis Café"
		s.Phone = "0922 333 444"
		s.Status = submissions.StatusReviewed
	})

	r := testutil.NewRouter()
	routes.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	sess := session.New(nil, nil)
	api := storeapi.New(srv.URL, sess)
	engine := syncengine.New(api, nil, sess, nil)
	return rig{db: db, session: sess, console: New(api, engine, sess, nil)}
}

func loggedIn(t *testing.T) rig {
	t.Helper()
	r := newRig(t)
	require.NoError(t, r.console.Login(context.Background(), "admin", "aura2026web"))
	require.NoError(t, r.console.Refresh(context.Background()))
	require.Len(t, r.console.Submissions(), 2)
	return r
}

func TestConsole_RequiresLogin(t *testing.T) {
	ctx := context.Background()
	c := newRig(t).console

	assert.ErrorIs(t, c.Refresh(ctx), ErrNotAuthenticated)
	_, err := c.SetStatus(ctx, "tomoca", submissions.StatusReviewed, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.Stats(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = c.Login(ctx, "admin", "nope")
	assert.ErrorIs(t, err, storeapi.ErrUnauthorized)
	assert.False(t, c.Authenticated())

	// portfolio listing is public
	items, err := c.Portfolio(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConsole_RejectedTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	require.NoError(t, r.session.Set(ctx, "garbage"))

	err := r.console.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, storeapi.ErrUnauthorized)
	assert.False(t, r.console.Authenticated())
}

func TestConsole_SearchAndFilter(t *testing.T) {
	c := loggedIn(t).console

	ids := func(list []submissions.Submission) []string {
		out := []string{}
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"tomoca"}, ids(c.Search("TOMOCA")))
	assert.Equal(t, []string{"kaldis"}, ids(c.Search("kaldis CAFÉ")))
	assert.Equal(t, []string{"tomoca"}, ids(c.Search("911000")))
	assert.Equal(t, []string{"kaldis"}, ids(c.Search("0922 333")))
	assert.Equal(t, []string{"kaldis"}, ids(c.Search("0922-333-444")))
	assert.Len(t, c.Search("  "), 2)
	assert.Empty(t, c.Search("habesha"))

	assert.Equal(t, []string{"kaldis"}, ids(c.FilterByStatus(submissions.StatusReviewed)))
	assert.Empty(t, c.FilterByStatus(submissions.StatusCompleted))
	assert.Equal(t, []string{"tomoca"}, ids(Filter(c.Submissions(), submissions.StatusSubmitted, "coffee")))
}

func TestConsole_StatusChanges(t *testing.T) {
	ctx := context.Background()
	r := loggedIn(t)
	c := r.console

	assert.Equal(t, []submissions.Status{submissions.StatusInProgress, submissions.StatusCompleted}, c.QuickActions("tomoca"))

	s, err := c.SetStatus(ctx, "tomoca", submissions.StatusInProgress, false)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusInProgress, s.Status)

	_, err = c.SetStatus(ctx, "tomoca", submissions.StatusReviewed, false)
	assert.ErrorIs(t, err, submissions.ErrIllegalTransition)

	s, err = c.SetStatus(ctx, "tomoca", submissions.StatusReviewed, true)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusReviewed, s.Status)

	_, err = c.SetStatus(ctx, "tomoca", submissions.StatusCompleted, false)
	require.NoError(t, err)
	assert.Empty(t, c.QuickActions("tomoca"))
	_, err = c.SetStatus(ctx, "tomoca", submissions.StatusInProgress, true)
	assert.ErrorIs(t, err, submissions.ErrIllegalTransition)

	rec, err := submissions.Get(r.db, "tomoca")
	require.NoError(t, err)
	assert.Equal(t, string(submissions.StatusCompleted), rec.Status)

	_, err = c.SetStatus(ctx, "nope", submissions.StatusReviewed, false)
	assert.ErrorIs(t, err, syncengine.ErrUnknownSubmission)
}

func TestConsole_Edit(t *testing.T) {
	ctx := context.Background()
	r := loggedIn(t)

	notes := "Wants Amharic copy"
	services := []string{"Espresso", " ", "Roastery tours"}
	link := "https://maps.google.com/?q=9.0302,38.7469"
	s, err := r.console.Edit(ctx, "tomoca", Edit{AdminNotes: &notes, Services: &services, GoogleMapsLink: &link})
	require.NoError(t, err)
	assert.Equal(t, []string{"Espresso", "Roastery tours"}, s.Services)
	require.NotNil(t, s.Location)
	assert.InDelta(t, 9.0302, s.Location.Lat, 1e-9)

	rec, err := submissions.Get(r.db, "tomoca")
	require.NoError(t, err)
	require.NotNil(t, rec.AdminNotes)
	assert.Equal(t, notes, *rec.AdminNotes)

	bad := "someday"
	_, err = r.console.Edit(ctx, "tomoca", Edit{EstimatedDelivery: &bad})
	assert.ErrorIs(t, err, submissions.ErrInvalidPatch)

	_, err = r.console.Edit(ctx, "tomoca", Edit{})
	assert.ErrorIs(t, err, submissions.ErrEmptyPatch)
}

func TestConsole_PaymentLinkRefreshesList(t *testing.T) {
	ctx := context.Background()
	r := loggedIn(t)
	gw := testutil.UseGateway(t)

	link, err := r.console.CreatePaymentLink(ctx, "tomoca", false)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), link.Amount)

	got := Filter(r.console.Submissions(), submissions.StatusPaymentPending, "")
	require.Len(t, got, 1)
	assert.Equal(t, "tomoca", got[0].ID)

	gw.Settle(link.TxRef, submissions.PaymentPaid)
	v, err := r.console.VerifyPayment(ctx, link.TxRef)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusPaymentReceived, v.OrderStatus)
	assert.Len(t, r.console.FilterByStatus(submissions.StatusPaymentReceived), 1)

	_, err = r.console.CreatePaymentLink(ctx, "tomoca", false)
	var apiErr *storeapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Payment already received for this submission", apiErr.Message)

	st, err := r.console.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalSubmissions)
	assert.Equal(t, int64(5000), st.TotalRevenue)
}

func TestConsole_PortfolioAndUpload(t *testing.T) {
	ctx := context.Background()
	c := loggedIn(t).console

	_, err := c.AddPortfolioItem(ctx, portfolio.Item{Title: "No URL"})
	assert.Error(t, err)

	it, err := c.AddPortfolioItem(ctx, portfolio.Item{Title: "Habesha Breweries", Category: "Beverage", URL: "https://habesha.test"})
	require.NoError(t, err)

	items, err := c.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, c.DeletePortfolioItem(ctx, it.ID))
	assert.ErrorIs(t, c.DeletePortfolioItem(ctx, it.ID), storeapi.ErrNotFound)

	url, err := c.Upload(ctx, storeapi.Attachment{Filename: "logo.svg", Content: []byte("<svg/>")})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Authenticated())
}
