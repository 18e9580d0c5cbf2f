package users

import (
	"net/http"
	"strings"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accounts *persist.Accounts
	pages    *persist.Binder
}

func NewHandler(accounts *persist.Accounts, pages *persist.Binder) *Handler {
	return &Handler{accounts: accounts, pages: pages}
}

type UsageDTO struct {
	Pages    int `json:"pages"`
	MaxPages int `json:"max_pages"`
}

type MeResponse struct {
	User   users.User    `json:"user"`
	Plan   plans.Plan    `json:"plan"`
	Access access.Policy `json:"access"`
	Usage  UsageDTO      `json:"usage"`
}

// GetCurrentUser GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	user, err := h.accounts.ByID(ctx, p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pages, err := h.pages.For(p).ListPages(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	policy := access.ComputePolicy(access.FromUser(*user))
	c.JSON(http.StatusOK, MeResponse{
		User:   *user,
		Plan:   plans.Find(user.Plan),
		Access: policy,
		Usage:  UsageDTO{Pages: len(pages), MaxPages: policy.Rules.MaxPages},
	})
}

// UpdateCurrentUser PATCH /me
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)

	var body struct {
		Name  *string `json:"name" binding:"omitempty,max=120"`
		Phone *string `json:"phone" binding:"omitempty,max=32"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	fields := store.Fields{}
	if body.Name != nil {
		fields["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Phone != nil {
		fields["phone"] = strings.TrimSpace(*body.Phone)
	}
	if len(fields) == 0 {
		_ = c.Error(apierr.BadRequest("Nothing to update", nil))
		return
	}
	if err := h.accounts.Update(c.Request.Context(), p.UserID, fields); err != nil {
		_ = c.Error(err)
		return
	}
	h.GetCurrentUser(c)
}
