package middleware

import (
	"net/http"
	"strings"
	"testing"

	"auraweb-intake/internal/domain/users"
	"auraweb-intake/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Modern & Clean", SanitizeString("Modern & Clean"))
	assert.Equal(t, "Hello", SanitizeString("<b>Hello</b>"))
	assert.Equal(t, "", SanitizeString("<script>alert(1)</script>"))

	// encoded markup must not come back as live tags
	assert.Equal(t, "Aura", SanitizeString("&lt;script&gt;alert(1)&lt;/script&gt;Aura"))
	assert.Equal(t, "", SanitizeString("&lt;img src=x onerror=alert(1)&gt;"))
	assert.Equal(t, "x", SanitizeString("&amp;lt;b&amp;gt;x"))
	assert.Equal(t, "Tom & Jerry", SanitizeString("Tom &amp; Jerry"))
	assert.NotContains(t, SanitizeString("&amp;amp;lt;img src=x onerror=alert(1)&amp;amp;gt;"), "<img")
}

func TestSanitizeJSON_Nested(t *testing.T) {
	out, err := SanitizeJSON([]byte(`{"a":"<i>x</i>","list":["<b>y</b>",1],"m":{"k":"<u>z</u>"},"n":3}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","list":["y",1],"m":{"k":"z"},"n":3}`, string(out))

	_, err = SanitizeJSON([]byte(`{broken`))
	assert.Error(t, err)
}

func TestSanitizeMiddleware(t *testing.T) {
	r := testutil.NewRouter()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	w := testutil.Do(t, r, http.MethodPost, "/echo", map[string]string{"name": "<img src=x onerror=alert(1)>Aura"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Aura"}`, w.Body.String())

	w = testutil.Do(t, r, http.MethodPost, "/echo", strings.NewReader(`{nope`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	testutil.UseJWTSecret(t)

	r := testutil.NewRouter()
	r.GET("/who", AuthMiddleware(), RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id"), "username": c.GetString("username")})
	})

	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, r, http.MethodGet, "/who", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, r, http.MethodGet, "/who", nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, testutil.Do(t, r, http.MethodGet, "/who", nil, testutil.Token(t, 2, "viewer")).Code)

	w := testutil.Do(t, r, http.MethodGet, "/who", nil, testutil.Token(t, 2, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":2,"username":"admin"}`, w.Body.String())
}

func TestRouteLabel(t *testing.T) {
	r := testutil.NewRouter()
	var seen string
	r.Use(func(c *gin.Context) {
		c.Next()
		seen = routeLabel(c)
	})
	r.GET("/api/submissions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	testutil.Do(t, r, http.MethodGet, "/api/submissions/abc", nil, "")
	assert.Equal(t, "/api/submissions/:id", seen)

	testutil.Do(t, r, http.MethodGet, "/wp-admin.php", nil, "")
	assert.Equal(t, "unmatched", seen)
}

func TestRequireActiveAccount(t *testing.T) {
	db := testutil.UseDB(t)
	testutil.UseJWTSecret(t)
	require.NoError(t, db.Create(&users.User{ID: 5, Username: "hana", Role: users.RoleAdmin, IsActive: true}).Error)

	r := testutil.NewRouter()
	r.GET("/x", AuthMiddleware(), RequireActiveAccount(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodGet, "/x", nil, testutil.Token(t, 5, "admin")).Code)
	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, r, http.MethodGet, "/x", nil, testutil.Token(t, 6, "admin")).Code)

	require.NoError(t, db.Model(&users.User{}).Where("id = ?", 5).Update("is_active", false).Error)
	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, r, http.MethodGet, "/x", nil, testutil.Token(t, 5, "admin")).Code)
}
