package siteapi

import (
	"errors"
	"net/http"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/render"
	"kashpages/internal/domain/site"

	"github.com/gin-gonic/gin"
)

func (h *Handler) toPageDTO(p site.Page) PageDTO {
	dto := PageDTO{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		ShopSlug:       p.ShopSlug,
		Lang:           p.Lang,
		Status:         p.Status,
		AdminNotes:     p.AdminNotes,
		TemplateID:     p.TemplateID,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		SEOKeywords:    p.SEOKeywords,
		OGImage:        p.OGImage,
		PublicURL:      site.BuildPublicURL(h.publicBaseURL, p.OwnerHandle, p.Slug),
		PublishedAt:    p.PublishedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.ShopSlug != nil {
		dto.ShopURL = site.BuildShopURL(h.publicBaseURL, *p.ShopSlug)
	}
	return dto
}

// previewMode reads ?mode=desktop|tablet|mobile.
func previewMode(c *gin.Context) (render.PreviewMode, bool) {
	mode, err := render.ParseMode(c.Query("mode"))
	if err != nil {
		_ = c.Error(apierr.BadRequest(err.Error(), err))
		return "", false
	}
	return mode, true
}

// readDocument decodes an editor-submitted block list from the request body.
func readDocument(c *gin.Context) (*blocks.Document, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apierr.BadRequest("Invalid body", err))
		return nil, false
	}
	doc, err := blocks.UnmarshalStrict(raw)
	if err != nil {
		if errors.Is(err, blocks.ErrCorruptDocument) {
			_ = c.Error(apierr.BadRequest("Body must be a block list", err))
			return nil, false
		}
		_ = c.Error(err)
		return nil, false
	}
	return doc, true
}

func writeHTML(c *gin.Context, out render.Output) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out.HTML))
}
