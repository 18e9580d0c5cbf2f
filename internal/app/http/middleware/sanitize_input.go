package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeInput strips markup from every string in a JSON object body, nested values
// included. It is mounted on account and page-metadata routes only; block content
// keeps its markup and is sanitized when rendered.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
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

		var body map[string]interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		for k, v := range body {
			body[k] = sanitizeValue(v)
		}

		newBody, err := json.Marshal(body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))
		c.Next()
	}
}

func sanitizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return strictPolicy.Sanitize(t)
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = sanitizeValue(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = sanitizeValue(inner)
		}
		return t
	default:
		return v
	}
}
