package reviewsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
	"kashpages/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	r       *gin.Engine
	people  map[string]access.Principal
	pages   map[string]string
	reviews []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	cols := testutil.Collections(t)
	binder := persist.NewBinder(cols)
	f := &fixture{
		people: map[string]access.Principal{
			"rehana": testutil.User(t, cols, "rehana", users.RoleUser, "pro"),
			"sajad":  testutil.User(t, cols, "sajad", users.RoleUser, "free"),
			"tahir":  testutil.User(t, cols, "tahir", users.RoleUser, "business"),
		},
		pages: map[string]string{},
	}
	for name, p := range f.people {
		page, err := binder.For(p).CreatePage(ctx, persist.NewPage{Title: name + " shop"})
		require.NoError(t, err)
		f.pages[name] = page.ID
	}

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, r := range []site.Review{
		{Rating: 5, ReviewerName: "Ulfat", ReviewerEmail: "ulfat@example.com", Comment: "Superb kangri"},
		{Rating: 2, ReviewerName: "Vaseem", Comment: "Too pricey"},
		{Rating: 4, ReviewerName: "Yasir", Comment: "Good walnut wood"},
	} {
		r.PageID, r.OwnerID, r.Visible = f.pages["rehana"], f.people["rehana"].UserID, true
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		id, err := cols.Reviews.Create(ctx, &r)
		require.NoError(t, err)
		f.reviews = append(f.reviews, id)
	}

	h := NewHandler(binder)
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()), func(c *gin.Context) {
		if p, ok := f.people[c.GetHeader("X-User")]; ok {
			middleware.SetPrincipal(c, p)
		}
	})
	r.GET("/pages/:id/reviews", h.List)
	r.PATCH("/pages/:id/reviews/:review", h.SetVisible)
	r.DELETE("/pages/:id/reviews/:review", h.Delete)
	f.r = r
	return f
}

func (f *fixture) do(user, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-User", user)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) ListResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	path := "/pages/" + f.pages["rehana"] + "/reviews"

	out := decodeList(t, f.do("rehana", http.MethodGet, path, ""))
	require.Len(t, out.Reviews, 3)
	assert.Equal(t, "Yasir", out.Reviews[0].ReviewerName)
	assert.Equal(t, "ulfat@example.com", out.Reviews[2].ReviewerEmail)
	assert.Equal(t, 3, out.Total)
	assert.InDelta(t, 3.7, out.AverageRating, 0.001)

	out = decodeList(t, f.do("rehana", http.MethodGet, path+"?rating=5", ""))
	require.Len(t, out.Reviews, 1)
	assert.Equal(t, "Ulfat", out.Reviews[0].ReviewerName)

	out = decodeList(t, f.do("rehana", http.MethodGet, path+"?q=walnut", ""))
	require.Len(t, out.Reviews, 1)
	assert.Equal(t, "Yasir", out.Reviews[0].ReviewerName)

	out = decodeList(t, f.do("tahir", http.MethodGet, "/pages/"+f.pages["tahir"]+"/reviews", ""))
	assert.Empty(t, out.Reviews)
	assert.Zero(t, out.AverageRating)

	assert.Equal(t, http.StatusBadRequest, f.do("rehana", http.MethodGet, path+"?rating=6", "").Code)
}

func TestReviewsRequirePaidPlan(t *testing.T) {
	f := newFixture(t)

	w := f.do("sajad", http.MethodGet, "/pages/"+f.pages["sajad"]+"/reviews", "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "Pro or Business")
}

func TestToggleAndDeleteReview(t *testing.T) {
	f := newFixture(t)
	base := "/pages/" + f.pages["rehana"] + "/reviews/"

	w := f.do("rehana", http.MethodPatch, base+f.reviews[1], `{"is_visible":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dto ReviewDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.False(t, dto.Visible)

	assert.Equal(t, http.StatusUnprocessableEntity, f.do("rehana", http.MethodPatch, base+f.reviews[1], `{}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do("rehana", http.MethodPatch, base+"ghost", `{"is_visible":true}`).Code)

	// another owner cannot touch them, even on a paid plan
	other := "/pages/" + f.pages["rehana"] + "/reviews"
	assert.Equal(t, http.StatusNotFound, f.do("tahir", http.MethodGet, other, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("tahir", http.MethodDelete, base+f.reviews[0], "").Code)

	assert.Equal(t, http.StatusNoContent, f.do("rehana", http.MethodDelete, base+f.reviews[0], "").Code)
	assert.Equal(t, http.StatusNoContent, f.do("rehana", http.MethodDelete, base+f.reviews[0], "").Code)

	out := decodeList(t, f.do("rehana", http.MethodGet, other, ""))
	assert.Equal(t, 2, out.Total)
}
