package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/users"
	"kashpages/internal/infra/token"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func whoami(c *gin.Context) {
	p, _ := CurrentPrincipal(c)
	c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role, "plan": p.Plan})
}

func do(r http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	r := gin.New()
	r.GET("/me", Auth(issuer, nil), whoami)

	good, err := issuer.Issue(access.Principal{UserID: "u1", Role: users.RoleUser, Plan: "pro"})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/me", "Bearer "+good, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"pro"`)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", good, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "Bearer nope", "").Code)

	other, err := token.NewIssuer("other-secret", time.Hour).Issue(access.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "Bearer "+other, "").Code)
}

func TestAuthReloadsUser(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	lookup := func(_ context.Context, id string) (*users.User, error) {
		if id != "u1" {
			return nil, &persist.NotFoundError{Ref: persist.Ref{Kind: persist.KindUser, ID: id}}
		}
		return &users.User{ID: "u1", Role: users.RoleAdmin, Plan: "business"}, nil
	}
	r := gin.New()
	r.GET("/me", Auth(issuer, lookup), whoami)

	tok, _ := issuer.Issue(access.Principal{UserID: "u1", Role: users.RoleUser, Plan: "free"})
	w := do(r, http.MethodGet, "/me", "Bearer "+tok, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"business"`)

	gone, _ := issuer.Issue(access.Principal{UserID: "u2"})
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "Bearer "+gone, "").Code)
}

func TestRequireRoles(t *testing.T) {
	as := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { SetPrincipal(c, access.Principal{UserID: "u", Role: role}) }
	}
	r := gin.New()
	r.GET("/mod/:role", func(c *gin.Context) { as(c.Param("role"))(c) }, RequireModerator(), whoami)
	r.GET("/admin/:role", func(c *gin.Context) { as(c.Param("role"))(c) }, RequireAdmin(), whoami)
	r.GET("/anon", RequireAdmin(), whoami)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/mod/moderator", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/mod/admin", "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/mod/user", "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/moderator", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin/admin", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/anon", "", "").Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.Nop()))
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(&persist.NotFoundError{Ref: persist.PageRef("p1")})
	})
	r.GET("/down", func(c *gin.Context) {
		_ = c.Error(&persist.PersistenceError{Op: "save", Ref: persist.PageRef("p1"), Err: errors.New("dial tcp")})
	})
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apierr.BadRequest("Bad mode", nil)) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, http.MethodGet, "/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"pages/p1 not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/down", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")

	w = do(r, http.MethodGet, "/app", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Bad mode"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/ok", "", "").Code)
}

func TestSanitizeInput(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeInput())
	echo := func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	}
	r.POST("/echo", echo)
	r.GET("/echo", echo)

	w := do(r, http.MethodPost, "/echo", "", `{"title":"<b>Spice</b> Bazaar<script>x()</script>","seo":{"tags":["<i>a</i>"]},"n":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Spice Bazaar","seo":{"tags":["a"]},"n":3}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/echo", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/echo", "", "{nope").Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := do(r, http.MethodGet, "/x", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, w.Header().Get("X-Request-Id"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}
