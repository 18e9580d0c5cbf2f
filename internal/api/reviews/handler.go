// Package reviewsapi lets page owners manage the reviews visitors leave on
// their published pages.
package reviewsapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/site"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	pages *persist.Binder
}

func NewHandler(pages *persist.Binder) *Handler {
	return &Handler{pages: pages}
}

type ReviewDTO struct {
	ID            string    `json:"id"`
	Rating        int       `json:"rating"`
	ReviewerName  string    `json:"reviewer_name"`
	ReviewerEmail string    `json:"reviewer_email,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	Visible       bool      `json:"is_visible"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListResponse struct {
	Reviews       []ReviewDTO `json:"reviews"`
	Total         int         `json:"total"`
	AverageRating float64     `json:"average_rating"`
}

type visibilityRequest struct {
	Visible *bool `json:"is_visible" binding:"required"`
}

func toDTO(r site.Review) ReviewDTO {
	return ReviewDTO{
		ID:            r.ID,
		Rating:        r.Rating,
		ReviewerName:  r.ReviewerName,
		ReviewerEmail: r.ReviewerEmail,
		Comment:       r.Comment,
		Visible:       r.Visible,
		CreatedAt:     r.CreatedAt,
	}
}

// adapter returns the caller's adapter, or reports 402 when their plan has no reviews.
func (h *Handler) adapter(c *gin.Context) (*persist.Adapter, bool) {
	p, _ := middleware.CurrentPrincipal(c)
	if !access.ComputePolicy(p).Can(access.CapReviews) {
		_ = c.Error(apierr.New(http.StatusPaymentRequired, "Reviews require a Pro or Business plan", nil))
		return nil, false
	}
	return h.pages.For(p), true
}

// List GET /pages/:id/reviews?rating=&q=
func (h *Handler) List(c *gin.Context) {
	a, ok := h.adapter(c)
	if !ok {
		return
	}
	var filter persist.ReviewFilter
	if raw := c.Query("rating"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 5 {
			_ = c.Error(apierr.BadRequest("rating must be between 1 and 5", err))
			return
		}
		filter.Rating = n
	}
	filter.Search = c.Query("q")

	list, err := a.Reviews(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := ListResponse{Reviews: make([]ReviewDTO, 0, len(list)), Total: len(list)}
	sum := 0
	for _, r := range list {
		out.Reviews = append(out.Reviews, toDTO(r))
		sum += r.Rating
	}
	if len(list) > 0 {
		out.AverageRating = math.Round(float64(sum)/float64(len(list))*10) / 10
	}
	c.JSON(http.StatusOK, out)
}

// SetVisible PATCH /pages/:id/reviews/:review
func (h *Handler) SetVisible(c *gin.Context) {
	a, ok := h.adapter(c)
	if !ok {
		return
	}
	var body visibilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	r, err := a.SetReviewVisible(c.Request.Context(), c.Param("id"), c.Param("review"), *body.Visible)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDTO(*r))
}

// Delete DELETE /pages/:id/reviews/:review
func (h *Handler) Delete(c *gin.Context) {
	a, ok := h.adapter(c)
	if !ok {
		return
	}
	if err := a.DeleteReview(c.Request.Context(), c.Param("id"), c.Param("review")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
