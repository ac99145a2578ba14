package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auraweb-intake/config"
	"auraweb-intake/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const JWTSecret = "test-secret"

// UseJWTSecret sets config.JWT_SECRET for the test.
func UseJWTSecret(t testing.TB) {
	t.Helper()
	prev := config.JWT_SECRET
	config.JWT_SECRET = JWTSecret
	t.Cleanup(func() { config.JWT_SECRET = prev })
}

// Token signs a console token the way the login handler does.
func Token(t testing.TB, userID uint, role string) string {
	t.Helper()
	s, err := users.IssueToken(users.User{ID: userID, Username: "admin", Role: role}, JWTSecret, time.Now(), time.Hour)
	require.NoError(t, err)
	return s
}

// NewRouter returns a test-mode engine without the default logger.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// Do sends body (JSON-encoded unless it is already an io.Reader) and
// returns the recorded response.
func Do(t testing.TB, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorder body into T.
func Decode[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
