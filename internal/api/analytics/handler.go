package analyticsapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/analytics"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

const defaultWindowDays = 30

type Handler struct {
	pages *persist.Binder
	now   func() time.Time
}

func NewHandler(pages *persist.Binder) *Handler {
	return &Handler{pages: pages, now: time.Now}
}

// since reads ?since=RFC3339 or ?days=N; the default window is the last 30 days
// and days=0 means all time.
func (h *Handler) since(c *gin.Context) (time.Time, error) {
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, apierr.BadRequest("since must be an RFC3339 timestamp", err)
		}
		return t, nil
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultWindowDays)))
	if err != nil || days < 0 || days > 3650 {
		return time.Time{}, apierr.BadRequest("days must be between 0 and 3650", err)
	}
	if days == 0 {
		return time.Time{}, nil
	}
	return h.now().AddDate(0, 0, -days), nil
}

func (h *Handler) events(c *gin.Context) ([]analytics.Event, bool) {
	since, err := h.since(c)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	p, _ := middleware.CurrentPrincipal(c)
	events, err := h.pages.For(p).Events(c.Request.Context(), c.Param("id"), since)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return events, true
}

// Summary GET /pages/:id/analytics
func (h *Handler) Summary(c *gin.Context) {
	events, ok := h.events(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.Summarize(c.Param("id"), events))
}

// Export GET /pages/:id/analytics/export streams the raw events as CSV.
func (h *Handler) Export(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	if !access.ComputePolicy(p).Can(access.CapAnalyticsExport) {
		_ = c.Error(apierr.New(http.StatusPaymentRequired, "Analytics export requires a Pro or Business plan", nil))
		return
	}
	events, ok := h.events(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analytics-%s.csv"`, c.Param("id")))
	c.Status(http.StatusOK)
	if err := analytics.WriteCSV(c.Writer, events); err != nil {
		_ = c.Error(err)
	}
}
