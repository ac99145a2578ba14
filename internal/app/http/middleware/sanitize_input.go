package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxUnescape bounds entity decoding of nested encodings like &amp;lt;.
const maxUnescape = 8

// SanitizeString strips markup. Entities are decoded before the policy
// runs, so encoded tags are removed too. Only &amp; is turned back into a
// plain ampersand ("Modern & Clean" stays as typed).
func SanitizeString(s string) string {
	for i := 0; i < maxUnescape; i++ {
		next := html.UnescapeString(s)
		if next == s {
			break
		}
		s = next
	}
	return strings.ReplaceAll(strict.Sanitize(s), "&amp;", "&")
}

// SanitizeValue cleans every string inside a decoded JSON value.
func SanitizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return SanitizeString(t)
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = SanitizeValue(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = SanitizeValue(inner)
		}
		return t
	default:
		return v
	}
}

// SanitizeJSON re-encodes a JSON object with all string fields cleaned.
func SanitizeJSON(raw []byte) ([]byte, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return json.Marshal(SanitizeValue(body))
}

// SanitizeAndCleanInputMiddleware cleans all string fields in JSON input using bluemonday
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		// multipart bodies are cleaned by the handler that reads them
		if !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		newBody, err := SanitizeJSON(buf)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}
