package admin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accounts *persist.Accounts
	pages    *persist.Binder
	now      func() time.Time
}

func NewHandler(accounts *persist.Accounts, pages *persist.Binder) *Handler {
	return &Handler{accounts: accounts, pages: pages, now: time.Now}
}

type AdminUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Plan         string    `json:"plan"`
	AuthProvider string    `json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminPage struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	OwnerHandle string     `json:"owner_handle"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	ShopSlug    *string    `json:"shop_slug,omitempty"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:           u.ID,
		Name:         u.Name,
		Handle:       u.Handle,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Plan:         plans.NormalizeTier(u.Plan),
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
}

func toAdminPages(list []site.Page) []AdminPage {
	out := make([]AdminPage, 0, len(list))
	for _, p := range list {
		out = append(out, AdminPage{
			ID:          p.ID,
			OwnerID:     p.OwnerID,
			OwnerHandle: p.OwnerHandle,
			Title:       p.Title,
			Slug:        p.Slug,
			ShopSlug:    p.ShopSlug,
			Status:      p.Status,
			AdminNotes:  p.AdminNotes,
			PublishedAt: p.PublishedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out
}

func (h *Handler) adapter(c *gin.Context) *persist.Adapter {
	p, _ := middleware.CurrentPrincipal(c)
	return h.pages.For(p)
}

// ListAllUsers GET /admin/users?limit=
func (h *Handler) ListAllUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 500 {
		_ = c.Error(apierr.BadRequest("limit must be between 1 and 500", err))
		return
	}
	list, err := h.accounts.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, toAdminUser(u))
	}
	c.JSON(http.StatusOK, out)
}

// GetUserDetails GET /admin/users/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.accounts.ByID(ctx, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	pages, err := h.pages.For(access.FromUser(*user)).ListPages(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":   toAdminUser(*user),
		"access": access.ComputePolicy(access.FromUser(*user)),
		"pages":  toAdminPages(pages),
	})
}

// SetUserPlan PUT /admin/users/:id/plan
func (h *Handler) SetUserPlan(c *gin.Context) {
	var body struct {
		Plan string `json:"plan" binding:"required,oneof=free pro business"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	h.updateUser(c, store.Fields{"plan": plans.NormalizeTier(body.Plan)})
}

// SetUserRole PUT /admin/users/:id/role
func (h *Handler) SetUserRole(c *gin.Context) {
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	if !users.ValidRole(body.Role) {
		_ = c.Error(apierr.BadRequest("Unknown role", nil))
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	if p.UserID == c.Param("id") && body.Role != users.RoleAdmin {
		_ = c.Error(apierr.Conflict("Admins cannot demote themselves", nil))
		return
	}
	h.updateUser(c, store.Fields{"role": body.Role})
}

func (h *Handler) updateUser(c *gin.Context, fields store.Fields) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.accounts.ByID(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.accounts.Update(ctx, id, fields); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.accounts.ByID(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toAdminUser(*user))
}

// GetAdminStats GET /admin/stats
func (h *Handler) GetAdminStats(c *gin.Context) {
	thirtyDaysAgo := h.now().AddDate(0, 0, -30)
	st, err := h.adapter(c).Stats(c.Request.Context(), thirtyDaysAgo)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListPages GET /moderation/pages?status=pending
func (h *Handler) ListPages(c *gin.Context) {
	status := c.DefaultQuery("status", site.StatusPending)
	if !site.ValidStatus(status) {
		_ = c.Error(apierr.BadRequest("Unknown status", nil))
		return
	}
	list, err := h.adapter(c).PagesByStatus(c.Request.Context(), status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toAdminPages(list))
}

// Approve POST /moderation/pages/:id/approve
func (h *Handler) Approve(c *gin.Context) { h.moderate(c, site.ActionApprove, false) }

// Reject POST /moderation/pages/:id/reject; notes are required so the owner knows what to fix.
func (h *Handler) Reject(c *gin.Context) { h.moderate(c, site.ActionReject, true) }

// Unpublish POST /moderation/pages/:id/unpublish
func (h *Handler) Unpublish(c *gin.Context) { h.moderate(c, site.ActionUnpublish, false) }

func (h *Handler) moderate(c *gin.Context, action site.Action, notesRequired bool) {
	var body struct {
		Notes string `json:"notes" binding:"max=2000"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(apierr.Validation(err))
			return
		}
	}
	if notesRequired && strings.TrimSpace(body.Notes) == "" {
		_ = c.Error(apierr.New(http.StatusUnprocessableEntity, "notes is required", nil))
		return
	}
	page, err := h.adapter(c).Moderate(c.Request.Context(), c.Param("id"), action, body.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toAdminPages([]site.Page{*page})[0])
}
