package public

import (
	"net/http"
	"strconv"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/site"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

type ExploreShop struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	OwnerHandle string     `json:"owner_handle"`
	PublicURL   string     `json:"public_url"`
	ShopURL     string     `json:"shop_url,omitempty"`
	OGImage     string     `json:"og_image,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type ExploreResponse struct {
	Shops []ExploreShop `json:"shops"`
}

// Explore GET /explore?q=&limit=
func (h *Handler) Explore(c *gin.Context) {
	limit := persist.DefaultExploreLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > persist.MaxExploreLimit {
			_ = c.Error(apierr.BadRequest("limit must be between 1 and "+strconv.Itoa(persist.MaxExploreLimit), err))
			return
		}
		limit = n
	}

	pages, err := h.resolver.Published(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := ExploreResponse{Shops: make([]ExploreShop, 0, len(pages))}
	for _, p := range pages {
		shop := ExploreShop{
			Title:       p.Title,
			Description: p.SEODescription,
			OwnerHandle: p.OwnerHandle,
			PublicURL:   site.BuildPublicURL(h.publicBaseURL, p.OwnerHandle, p.Slug),
			OGImage:     p.OGImage,
			PublishedAt: p.PublishedAt,
		}
		if p.ShopSlug != nil {
			shop.ShopURL = site.BuildShopURL(h.publicBaseURL, *p.ShopSlug)
		}
		out.Shops = append(out.Shops, shop)
	}
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, out)
}
