// Package public serves published pages to anonymous visitors and records their
// engagement events.
package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/render"
	"kashpages/internal/infra/rediscache"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
	"kashpages/internal/worker"

	"github.com/gin-gonic/gin"
)

const maxEventMetadata = 2048

type Handler struct {
	resolver      *persist.Resolver
	cache         *rediscache.Cache
	pool          *worker.Pool
	log           *logger.Logger
	publicBaseURL string
}

func NewHandler(resolver *persist.Resolver, cache *rediscache.Cache, pool *worker.Pool, log *logger.Logger, publicBaseURL string) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{resolver: resolver, cache: cache, pool: pool, log: log.With("component", "public"), publicBaseURL: publicBaseURL}
}

type resolveFunc func(ctx context.Context) (*persist.Published, error)

// GET /p/:owner/:slug
func (h *Handler) ByOwnerSlug(c *gin.Context) {
	owner, slug := c.Param("owner"), c.Param("slug")
	h.serve(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByOwnerSlug(ctx, owner, slug)
	})
}

// GET /s/:slug
func (h *Handler) ByShopSlug(c *gin.Context) {
	slug := c.Param("slug")
	h.serve(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByShopSlug(ctx, slug)
	})
}

// serve answers from the cache when the path still points at the current
// version of its page, and renders otherwise. Every page write bumps the
// version, so a renamed slug misses and resolves again.
func (h *Handler) serve(c *gin.Context, resolve resolveFunc) {
	ctx := c.Request.Context()
	path := c.Request.URL.Path
	routeKey := rediscache.RouteKey(path)

	if raw, ok := h.cache.Get(ctx, routeKey); ok {
		if pageID, ownerID, found := strings.Cut(string(raw), " "); found {
			version := h.cache.Version(ctx, rediscache.PageVersionKey(pageID))
			if html, ok := h.cache.Get(ctx, rediscache.PageHTMLKey(path, pageID, version)); ok {
				h.recordView(pageID, ownerID)
				writePage(c, html)
				return
			}
		}
	}

	pub, err := resolve(ctx)
	if err != nil {
		if persist.IsNotFound(err) {
			h.cache.Delete(ctx, routeKey)
			c.Header("Cache-Control", "no-store")
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(render.NotFound()))
			return
		}
		_ = c.Error(err)
		return
	}

	version := h.cache.Version(ctx, rediscache.PageVersionKey(pub.Page.ID))
	meta := render.MetaFor(pub.Page, pub.OwnerPlan).WithReviews(pub.Reviews)
	out, err := render.RenderPage(meta, pub.Doc, render.Context{Mode: render.ModeDesktop})
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	for _, w := range append(pub.Warnings, out.Warnings...) {
		h.log.Warn("block rendered as placeholder", "page_id", pub.Page.ID, "block_id", w.BlockID, "type", string(w.Type), "reason", w.Reason)
	}

	html := []byte(out.HTML)
	h.cache.Set(ctx, rediscache.PageHTMLKey(path, pub.Page.ID, version), html)
	h.cache.Set(ctx, routeKey, []byte(pub.Page.ID+" "+pub.Page.OwnerID))
	h.recordView(pub.Page.ID, pub.Page.OwnerID)
	writePage(c, html)
}

// Invalidate returns the save hook that retires cached renders of a changed page.
func Invalidate(cache *rediscache.Cache) persist.SavedFunc {
	return func(ctx context.Context, ref persist.Ref) {
		if ref.Kind == persist.KindPage {
			cache.Bump(ctx, rediscache.PageVersionKey(ref.ID))
		}
	}
}

func writePage(c *gin.Context, html []byte) {
	c.Header("Cache-Control", "public, max-age=60")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *Handler) recordView(pageID, ownerID string) {
	h.enqueue(pageID, ownerID, analytics.EventView, nil)
}

func (h *Handler) enqueue(pageID, ownerID string, typ analytics.EventType, metadata []byte) bool {
	if h.pool == nil {
		return false
	}
	return h.pool.Submit(func(ctx context.Context) error {
		return h.resolver.RecordEvent(ctx, pageID, ownerID, typ, metadata)
	})
}

type eventRequest struct {
	EventType string          `json:"event_type" binding:"required"`
	Metadata  json.RawMessage `json:"metadata"`
}

// POST /p/:owner/:slug/events
func (h *Handler) OwnerSlugEvent(c *gin.Context) {
	owner, slug := c.Param("owner"), c.Param("slug")
	h.event(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByOwnerSlug(ctx, owner, slug)
	})
}

// POST /s/:slug/events
func (h *Handler) ShopSlugEvent(c *gin.Context) {
	slug := c.Param("slug")
	h.event(c, func(ctx context.Context) (*persist.Published, error) {
		return h.resolver.ByShopSlug(ctx, slug)
	})
}

func (h *Handler) event(c *gin.Context, resolve resolveFunc) {
	var body eventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	typ, err := analytics.ParseEventType(body.EventType)
	if err != nil {
		_ = c.Error(apierr.BadRequest(err.Error(), err))
		return
	}
	meta := bytes.TrimSpace(body.Metadata)
	if bytes.Equal(meta, []byte("null")) {
		meta = nil
	}
	if len(meta) > maxEventMetadata {
		_ = c.Error(apierr.BadRequest("Event metadata is too large", nil))
		return
	}
	if len(meta) > 0 && meta[0] != '{' {
		_ = c.Error(apierr.BadRequest("Event metadata must be an object", nil))
		return
	}

	pub, err := resolve(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.enqueue(pub.Page.ID, pub.Page.OwnerID, typ, meta) {
		_ = c.Error(apierr.Unavailable("Event not recorded, please retry", errors.New("event queue full")))
		return
	}
	c.Status(http.StatusAccepted)
}
