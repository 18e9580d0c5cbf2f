package public

import (
	"context"
	"net/http"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/site"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewerName  string `json:"reviewer_name" binding:"required,max=80"`
	ReviewerEmail string `json:"reviewer_email" binding:"omitempty,email"`
	Comment       string `json:"comment" binding:"max=1000"`
}

type ReviewDTO struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	ReviewerName string    `json:"reviewer_name"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// POST /p/:owner/:slug/reviews
func (h *Handler) OwnerSlugReview(c *gin.Context) {
	owner, slug := c.Param("owner"), c.Param("slug")
	h.review(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByOwnerSlug(ctx, owner, slug)
	})
}

// POST /s/:slug/reviews
func (h *Handler) ShopSlugReview(c *gin.Context) {
	slug := c.Param("slug")
	h.review(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByShopSlug(ctx, slug)
	})
}

func (h *Handler) review(c *gin.Context, resolve resolveFunc) {
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	ctx := c.Request.Context()
	pub, err := resolve(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !site.RulesFor(pub.OwnerPlan).Reviews {
		_ = c.Error(apierr.Forbidden("This page does not accept reviews"))
		return
	}

	rev, err := h.resolver.AddReview(ctx, pub.Page, site.Review{
		Rating:        body.Rating,
		ReviewerName:  body.ReviewerName,
		ReviewerEmail: body.ReviewerEmail,
		Comment:       body.Comment,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	Invalidate(h.cache)(ctx, persist.PageRef(pub.Page.ID))
	h.log.Info("review added", "page_id", pub.Page.ID, "rating", rev.Rating)
	c.JSON(http.StatusCreated, ReviewDTO{
		ID:           rev.ID,
		Rating:       rev.Rating,
		ReviewerName: rev.ReviewerName,
		Comment:      rev.Comment,
		CreatedAt:    rev.CreatedAt,
	})
}
