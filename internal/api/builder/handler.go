// Package builderapi exposes server-side editing sessions over HTTP.
package builderapi

import (
	"encoding/json"
	"net/http"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/builder"
	"kashpages/internal/domain/render"
	"kashpages/internal/persist"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *builder.Manager
	pages   *persist.Binder
	opts    []builder.Option
}

func NewHandler(manager *builder.Manager, pages *persist.Binder, opts ...builder.Option) *Handler {
	return &Handler{manager: manager, pages: pages, opts: opts}
}

// session resolves :id to a session of the caller.
func (h *Handler) session(c *gin.Context) (*builder.Session, bool) {
	p, _ := middleware.CurrentPrincipal(c)
	s, err := h.manager.Get(p, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return s, true
}

// respond writes the session view, or the error of the operation that preceded it.
func respond(c *gin.Context, s *builder.Session, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// POST /builder/sessions opens a session on a page, reusing the caller's open one.
func (h *Handler) Open(c *gin.Context) {
	var body struct {
		PageID string `json:"page_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	ref := persist.PageRef(body.PageID)

	if s, ok := h.manager.Find(p, ref); ok {
		c.JSON(http.StatusOK, s.Snapshot())
		return
	}
	s := builder.New(p, ref, h.pages.For(p), h.opts...)
	if err := s.Reload(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	h.manager.Add(s)
	c.JSON(http.StatusCreated, s.Snapshot())
}

// GET /builder/sessions/:id
func (h *Handler) Get(c *gin.Context) {
	if s, ok := h.session(c); ok {
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// POST /builder/sessions/:id/blocks
func (h *Handler) AddBlock(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	_, err := s.AddBlock(blocks.Type(body.Type))
	respond(c, s, err)
}

// PUT /builder/sessions/:id/blocks/:block
func (h *Handler) UpdateBlock(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Props json.RawMessage `json:"props" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	respond(c, s, s.UpdateBlockJSON(c.Param("block"), body.Props))
}

// DELETE /builder/sessions/:id/blocks/:block
func (h *Handler) RemoveBlock(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_, err := s.RemoveBlock(c.Param("block"))
	respond(c, s, err)
}

// POST /builder/sessions/:id/select with an empty block_id clears the selection.
func (h *Handler) Select(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		BlockID string `json:"block_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	if body.BlockID == "" {
		respond(c, s, s.ClearSelection())
		return
	}
	respond(c, s, s.SelectBlock(body.BlockID))
}

// POST /builder/sessions/:id/reorder
func (h *Handler) Reorder(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	respond(c, s, s.Reorder(body.IDs))
}

// POST /builder/sessions/:id/mode
func (h *Handler) SetMode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	mode, err := render.ParseMode(body.Mode)
	if err != nil {
		_ = c.Error(apierr.BadRequest(err.Error(), err))
		return
	}
	respond(c, s, s.SetPreviewMode(mode))
}

// POST /builder/sessions/:id/undo
func (h *Handler) Undo(c *gin.Context) {
	if s, ok := h.session(c); ok {
		respond(c, s, s.Undo())
	}
}

// POST /builder/sessions/:id/redo
func (h *Handler) Redo(c *gin.Context) {
	if s, ok := h.session(c); ok {
		respond(c, s, s.Redo())
	}
}

// GET /builder/sessions/:id/preview returns the editor rendering of the document.
func (h *Handler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	out := s.Preview()
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out.HTML))
}

// GET /builder/sessions/:id/export returns the document exactly as it would be saved.
func (h *Handler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	raw, err := s.ToSaveable()
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// POST /builder/sessions/:id/save
func (h *Handler) Save(c *gin.Context) {
	if s, ok := h.session(c); ok {
		respond(c, s, s.Save(c.Request.Context()))
	}
}

// POST /builder/sessions/:id/reload discards unsaved edits.
func (h *Handler) Reload(c *gin.Context) {
	if s, ok := h.session(c); ok {
		respond(c, s, s.Reload(c.Request.Context()))
	}
}

// DELETE /builder/sessions/:id
func (h *Handler) Close(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	if err := h.manager.Close(p, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
