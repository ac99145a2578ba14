package storeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"auraweb-intake/database"
	routes "auraweb-intake/internal/app/http"
	"auraweb-intake/internal/domain/portfolio"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type tokenBox struct{ tok string }

func (b *tokenBox) Token() string { return b.tok }

// liveServer runs the real router over an in-memory database with one
// bootstrap admin.
func liveServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.UseDB(t)
	testutil.UseJWTSecret(t)
	testutil.UseBlob(t)
	require.NoError(t, database.SeedBootstrapAdmin(db, "admin", "aura2026web"))

	r := testutil.NewRouter()
	routes.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	box := &tokenBox{}
	c := New(srv.URL, box)
	res, err := c.Login(context.Background(), "admin", "aura2026web")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	box.tok = res.Token
	return c
}

func TestClient_LoginFailureCarriesServerMessage(t *testing.T) {
	srv := liveServer(t)
	c := New(srv.URL, nil)

	_, err := c.Login(context.Background(), "admin", "wrong-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Invalid credentials", Message(err))
}

func TestClient_Me(t *testing.T) {
	srv := liveServer(t)
	acct, err := login(t, srv).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", acct.User.Username)
	assert.Equal(t, "admin", acct.User.Role)
	assert.NotEmpty(t, acct.Features.Storage)
}

func TestClient_AdminCallsNeedToken(t *testing.T) {
	srv := liveServer(t)

	_, err := New(srv.URL, nil).ListSubmissions(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = New(srv.URL, staticToken("garbage")).Stats(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_SubmissionLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := liveServer(t)
	c := login(t, srv)

	in := testutil.Submission("life-1")
	in.Email = nil
	created, err := c.CreateSubmission(ctx, in, []Attachment{{Filename: "front.png", Content: []byte("png")}})
	require.NoError(t, err)
	assert.Equal(t, "life-1", created.ID)
	require.Len(t, created.ImageURLs, 1)

	list, err := c.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Tomoca Coffee", list[0].BusinessName)

	status := submissions.StatusInProgress
	note := "design call booked"
	updated, err := c.UpdateSubmission(ctx, "life-1", submissions.Patch{Status: &status, AdminNotes: &note})
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusInProgress, updated.Status)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, note, *updated.AdminNotes)

	back := submissions.StatusReviewed
	_, err = c.UpdateSubmission(ctx, "life-1", submissions.Patch{Status: &back})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	got, err := c.UpdateSubmission(ctx, "life-1", submissions.Patch{Status: &back, StatusOverride: true})
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusReviewed, got.Status)

	one, err := c.GetSubmission(ctx, "life-1")
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusReviewed, one.Status)

	_, err = c.GetSubmission(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	tr, err := c.Track(ctx, "life-1", "+251911000111")
	require.NoError(t, err)
	assert.Equal(t, "life-1", tr.OrderID)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalSubmissions)
}

func TestClient_JSONCreateWithoutFiles(t *testing.T) {
	srv := liveServer(t)
	in := testutil.Submission("json-1")
	in.Email = nil

	created, err := New(srv.URL, nil).CreateSubmission(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusSubmitted, created.Status)
	assert.Empty(t, created.ImageURLs)
}

func TestClient_PaymentLinkAndVerify(t *testing.T) {
	ctx := context.Background()
	srv := liveServer(t)
	gw := testutil.UseGateway(t)
	c := login(t, srv)

	in := testutil.Submission("pay-1")
	in.Email = nil
	_, err := c.CreateSubmission(ctx, in, nil)
	require.NoError(t, err)

	link, err := c.CreatePaymentLink(ctx, "pay-1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), link.Amount)
	assert.Equal(t, submissions.StatusPaymentPending, link.Submission.Status)

	gw.Settle(link.TxRef, submissions.PaymentPaid)
	v, err := New(srv.URL, nil).VerifyPayment(ctx, link.TxRef)
	require.NoError(t, err)
	assert.Equal(t, submissions.PaymentPaid, v.Status)
	assert.Equal(t, submissions.StatusPaymentReceived, v.OrderStatus)
	assert.Equal(t, "Tomoca Coffee", v.BusinessName)
	assert.Equal(t, submissions.PackageBusiness, v.PackageID)
}

func TestClient_PortfolioUploadPackages(t *testing.T) {
	ctx := context.Background()
	srv := liveServer(t)
	c := login(t, srv)

	items, err := c.Portfolio(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	it, err := c.CreatePortfolioItem(ctx, portfolio.Item{Title: "Kaldis Cafe", Category: "Cafe", URL: "https://kaldis.test"})
	require.NoError(t, err)
	require.NotZero(t, it.ID)

	items, err = c.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, c.DeletePortfolioItem(ctx, it.ID))
	assert.ErrorIs(t, c.DeletePortfolioItem(ctx, it.ID), ErrNotFound)

	url, err := c.Upload(ctx, Attachment{Filename: "logo.png", Content: []byte("png")})
	require.NoError(t, err)
	assert.Contains(t, url, "https://files.test/")

	pkgs, err := c.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 3)
	assert.Equal(t, int64(3500), pkgs[0].DepositETB)
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Stats(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
