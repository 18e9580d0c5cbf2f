// Package siteapi serves the owner-facing page and template endpoints.
package siteapi

import (
	"net/http"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/builder"
	"kashpages/internal/domain/render"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	pages         *persist.Binder
	resolver      *persist.Resolver
	publicBaseURL string
}

func NewHandler(pages *persist.Binder, resolver *persist.Resolver, publicBaseURL string) *Handler {
	return &Handler{pages: pages, resolver: resolver, publicBaseURL: publicBaseURL}
}

func (h *Handler) adapter(c *gin.Context) *persist.Adapter {
	p, _ := middleware.CurrentPrincipal(c)
	return h.pages.For(p)
}

// GET /pages
func (h *Handler) ListPages(c *gin.Context) {
	pages, err := h.adapter(c).ListPages(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]PageDTO, 0, len(pages))
	for _, p := range pages {
		out = append(out, h.toPageDTO(p))
	}
	c.JSON(http.StatusOK, gin.H{"pages": out})
}

// POST /pages
func (h *Handler) CreatePage(c *gin.Context) {
	var body struct {
		Title    string `json:"title" binding:"max=120"`
		Slug     string `json:"slug" binding:"max=60"`
		Lang     string `json:"lang" binding:"omitempty,max=8"`
		Template string `json:"template"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	page, err := h.adapter(c).CreatePage(c.Request.Context(), persist.NewPage{
		Title:        body.Title,
		Slug:         body.Slug,
		Lang:         body.Lang,
		TemplateSlug: body.Template,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, h.toPageDTO(*page))
}

// GET /pages/:id
func (h *Handler) GetPage(c *gin.Context) {
	page, err := h.adapter(c).Page(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.toPageDTO(*page))
}

// PATCH /pages/:id
func (h *Handler) UpdatePage(c *gin.Context) {
	var body struct {
		Title          *string `json:"title" binding:"omitempty,max=120"`
		Slug           *string `json:"slug"`
		ShopSlug       *string `json:"shop_slug"`
		Lang           *string `json:"lang" binding:"omitempty,max=8"`
		SEOTitle       *string `json:"seo_title" binding:"omitempty,max=120"`
		SEODescription *string `json:"seo_description" binding:"omitempty,max=320"`
		SEOKeywords    *string `json:"seo_keywords" binding:"omitempty,max=255"`
		OGImage        *string `json:"og_image" binding:"omitempty,url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	page, err := h.adapter(c).UpdatePage(c.Request.Context(), c.Param("id"), persist.PageUpdate{
		Title:          body.Title,
		Slug:           body.Slug,
		ShopSlug:       body.ShopSlug,
		Lang:           body.Lang,
		SEOTitle:       body.SEOTitle,
		SEODescription: body.SEODescription,
		SEOKeywords:    body.SEOKeywords,
		OGImage:        body.OGImage,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.toPageDTO(*page))
}

// DELETE /pages/:id
func (h *Handler) DeletePage(c *gin.Context) {
	if err := h.adapter(c).DeletePage(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /pages/:id/content
func (h *Handler) GetContent(c *gin.Context) {
	doc, warnings, err := h.adapter(c).Load(c.Request.Context(), persist.PageRef(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDocumentDTO(doc, warnings))
}

// PUT /pages/:id/content replaces the whole document.
func (h *Handler) PutContent(c *gin.Context) {
	doc, ok := readDocument(c)
	if !ok {
		return
	}
	a := h.adapter(c)
	if limit := access.ComputePolicy(a.Principal()).Rules.MaxBlocks; limit > 0 && doc.Len() > limit {
		_ = c.Error(builder.ErrBlockLimit)
		return
	}
	if _, err := a.Save(c.Request.Context(), persist.PageRef(c.Param("id")), doc); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDocumentDTO(doc, nil))
}

// GET /pages/:id/preview renders the stored document as its owner will publish it.
func (h *Handler) PreviewPage(c *gin.Context) {
	mode, ok := previewMode(c)
	if !ok {
		return
	}
	a := h.adapter(c)
	ctx := c.Request.Context()
	page, err := a.Page(ctx, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	doc, _, err := a.Load(ctx, persist.PageRef(page.ID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	meta := render.MetaFor(*page, a.Principal().Plan)
	meta.NoIndex = true
	out, err := render.RenderPage(meta, doc, render.Context{Mode: mode})
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	writeHTML(c, out)
}

// POST /pages/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	page, err := h.adapter(c).Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.toPageDTO(*page))
}

// POST /pages/:id/unpublish
func (h *Handler) Unpublish(c *gin.Context) {
	page, err := h.adapter(c).Unpublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.toPageDTO(*page))
}

// GET /pages/:id/revisions
func (h *Handler) ListRevisions(c *gin.Context) {
	revs, err := h.adapter(c).Revisions(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]RevisionDTO, 0, len(revs))
	for _, r := range revs {
		out = append(out, RevisionDTO{ID: r.ID, Label: r.Label, AuthorID: r.AuthorID, CreatedAt: r.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"revisions": out})
}

// POST /pages/:id/revisions/:rev/restore
func (h *Handler) RestoreRevision(c *gin.Context) {
	doc, warnings, err := h.adapter(c).Restore(c.Request.Context(), c.Param("id"), c.Param("rev"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDocumentDTO(doc, warnings))
}
