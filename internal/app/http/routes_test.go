package routes

import (
	"net/http"
	"testing"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/users"
	"auraweb-intake/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes_AdminGuard(t *testing.T) {
	db := testutil.UseDB(t)
	testutil.UseJWTSecret(t)
	require.NoError(t, database.SeedBootstrapAdmin(db, "admin", "aura2026web"))
	var admin users.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	r := testutil.NewRouter()
	RegisterRoutes(r)

	w := testutil.Do(t, r, http.MethodGet, "/api/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(t, r, http.MethodGet, "/api/stats", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(t, r, http.MethodGet, "/api/stats", nil, testutil.Token(t, 7, "viewer"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Do(t, r, http.MethodGet, "/api/stats", nil, testutil.Token(t, admin.ID, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)

	// valid signature, but no such account
	w = testutil.Do(t, r, http.MethodGet, "/api/stats", nil, testutil.Token(t, admin.ID+100, "admin"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_Public(t *testing.T) {
	testutil.UseDB(t)
	r := testutil.NewRouter()
	RegisterRoutes(r)

	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodGet, "/api/portfolio", nil, "").Code)
	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodGet, "/api/packages", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodGet, "/api/track", nil, "").Code)

	w := testutil.Do(t, r, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "auraweb_http_requests_total")
}

func TestRoutes_SanitizesPublicJSON(t *testing.T) {
	testutil.UseDB(t)
	r := testutil.NewRouter()
	RegisterRoutes(r)

	in := testutil.Submission("clean-1")
	in.Email = nil
	in.BusinessName = `<script>alert(1)</script>Tomoca <b>Coffee</b>`
	w := testutil.Do(t, r, http.MethodPost, "/api/submissions", in, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"businessName":"Tomoca Coffee"`)
}
