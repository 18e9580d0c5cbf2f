package siteapi

import (
	"encoding/json"
	"net/http"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/render"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

// GET /templates?category=
func (h *Handler) ListTemplates(c *gin.Context) {
	list, err := h.resolver.Templates(c.Request.Context(), c.Query("category"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := GetTemplatesResponse{Templates: make([]TemplateDTO, 0, len(list))}
	for _, t := range list {
		out.Templates = append(out.Templates, toTemplateDTO(t))
	}
	c.JSON(http.StatusOK, out)
}

// GET /templates/:slug
func (h *Handler) GetTemplate(c *gin.Context) {
	tmpl, doc, warnings, err := h.resolver.TemplateBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, GetTemplateResponse{Template: toTemplateDTO(*tmpl), DocumentDTO: toDocumentDTO(doc, warnings)})
}

// GET /templates/:slug/preview
func (h *Handler) PreviewTemplate(c *gin.Context) {
	mode, ok := previewMode(c)
	if !ok {
		return
	}
	tmpl, doc, _, err := h.resolver.TemplateBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := render.RenderPage(render.PageMeta{Title: tmpl.Name, Description: tmpl.Description, NoIndex: true}, doc, render.Context{Mode: mode})
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	writeHTML(c, out)
}

// GET /blocks/types lists the palette with each type's default props.
func BlockTypes(c *gin.Context) {
	types := blocks.Types()
	out := make([]BlockTypeDTO, 0, len(types))
	for _, t := range types {
		props, err := blocks.Defaults(t)
		if err != nil {
			_ = c.Error(err)
			return
		}
		out = append(out, BlockTypeDTO{Type: t, Defaults: props})
	}
	c.JSON(http.StatusOK, gin.H{"types": out})
}

// POST /admin/templates
func (h *Handler) CreateTemplate(c *gin.Context) {
	var body struct {
		Slug        string          `json:"slug" binding:"required,max=60"`
		Name        string          `json:"name" binding:"required,max=120"`
		Category    string          `json:"category" binding:"max=40"`
		Description string          `json:"description" binding:"max=500"`
		Thumbnail   string          `json:"thumbnail" binding:"omitempty,url"`
		Blocks      json.RawMessage `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	doc, err := blocks.UnmarshalStrict(body.Blocks)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tmpl, err := h.adapter(c).CreateTemplate(c.Request.Context(), persist.NewTemplate{
		Slug:        body.Slug,
		Name:        body.Name,
		Category:    body.Category,
		Description: body.Description,
		Thumbnail:   body.Thumbnail,
		Doc:         doc,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toTemplateDTO(*tmpl))
}

// PUT /admin/templates/:id/content
func (h *Handler) PutTemplateContent(c *gin.Context) {
	doc, ok := readDocument(c)
	if !ok {
		return
	}
	if _, err := h.adapter(c).Save(c.Request.Context(), persist.TemplateRef(c.Param("id")), doc); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDocumentDTO(doc, nil))
}

// PATCH /admin/templates/:id
func (h *Handler) SetTemplateActive(c *gin.Context) {
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	if err := h.adapter(c).SetTemplateActive(c.Request.Context(), c.Param("id"), *body.Active); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": *body.Active})
}
