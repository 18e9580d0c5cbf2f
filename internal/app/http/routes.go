package routes

import (
	"net/http"

	adminapi "kashpages/internal/api/admin"
	analyticsapi "kashpages/internal/api/analytics"
	authapi "kashpages/internal/api/auth"
	builderapi "kashpages/internal/api/builder"
	"kashpages/internal/api/plans"
	"kashpages/internal/api/public"
	reviewsapi "kashpages/internal/api/reviews"
	siteapi "kashpages/internal/api/site"
	"kashpages/internal/api/users"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/infra/token"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *authapi.Handler
	Users     *users.Handler
	Site      *siteapi.Handler
	Builder   *builderapi.Handler
	Public    *public.Handler
	Analytics *analyticsapi.Handler
	Reviews   *reviewsapi.Handler
	Admin     *adminapi.Handler

	Issuer *token.Issuer
	Lookup middleware.UserLookup
	// Ready reports whether storage is reachable; nil means always ready.
	Ready func(c *gin.Context) error
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if h.Ready != nil {
			if err := h.Ready(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/plans", plans.ListPlans)
	r.GET("/blocks/types", siteapi.BlockTypes)
	r.GET("/templates", h.Site.ListTemplates)
	r.GET("/templates/:slug", h.Site.GetTemplate)
	r.GET("/templates/:slug/preview", h.Site.PreviewTemplate)

	// Published pages. Only published pages resolve.
	r.GET("/p/:owner/:slug", h.Public.ByOwnerSlug)
	r.POST("/p/:owner/:slug/events", h.Public.OwnerSlugEvent)
	r.GET("/s/:slug", h.Public.ByShopSlug)
	r.POST("/s/:slug/events", h.Public.ShopSlugEvent)
	r.GET("/explore", h.Public.Explore)
	r.POST("/p/:owner/:slug/reviews", middleware.SanitizeInput(), h.Public.OwnerSlugReview)
	r.POST("/s/:slug/reviews", middleware.SanitizeInput(), h.Public.ShopSlugReview)

	// Account routes get their input stripped of markup. Block content is
	// sanitized at render time instead.
	account := r.Group("/")
	account.Use(middleware.SanitizeInput())
	account.POST("/register", h.Auth.Register)
	account.POST("/login", h.Auth.Login)
	account.GET("/auth/google", h.Auth.GoogleStart)
	account.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.Auth(h.Issuer, h.Lookup))
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.PATCH("/me", middleware.SanitizeInput(), h.Users.UpdateCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)

	auth.GET("/pages", h.Site.ListPages)
	auth.POST("/pages", middleware.SanitizeInput(), h.Site.CreatePage)
	auth.GET("/pages/:id", h.Site.GetPage)
	auth.PATCH("/pages/:id", middleware.SanitizeInput(), h.Site.UpdatePage)
	auth.DELETE("/pages/:id", h.Site.DeletePage)
	auth.GET("/pages/:id/content", h.Site.GetContent)
	auth.PUT("/pages/:id/content", h.Site.PutContent)
	auth.GET("/pages/:id/preview", h.Site.PreviewPage)
	auth.POST("/pages/:id/submit", h.Site.Submit)
	auth.POST("/pages/:id/unpublish", h.Site.Unpublish)
	auth.GET("/pages/:id/revisions", h.Site.ListRevisions)
	auth.POST("/pages/:id/revisions/:rev/restore", h.Site.RestoreRevision)
	auth.GET("/pages/:id/analytics", h.Analytics.Summary)
	auth.GET("/pages/:id/analytics/export", h.Analytics.Export)
	auth.GET("/pages/:id/reviews", h.Reviews.List)
	auth.PATCH("/pages/:id/reviews/:review", h.Reviews.SetVisible)
	auth.DELETE("/pages/:id/reviews/:review", h.Reviews.Delete)

	builder := auth.Group("/builder/sessions")
	builder.POST("", h.Builder.Open)
	builder.GET("/:id", h.Builder.Get)
	builder.DELETE("/:id", h.Builder.Close)
	builder.POST("/:id/blocks", h.Builder.AddBlock)
	builder.PUT("/:id/blocks/:block", h.Builder.UpdateBlock)
	builder.DELETE("/:id/blocks/:block", h.Builder.RemoveBlock)
	builder.POST("/:id/select", h.Builder.Select)
	builder.POST("/:id/reorder", h.Builder.Reorder)
	builder.POST("/:id/mode", h.Builder.SetMode)
	builder.POST("/:id/undo", h.Builder.Undo)
	builder.POST("/:id/redo", h.Builder.Redo)
	builder.GET("/:id/preview", h.Builder.Preview)
	builder.GET("/:id/export", h.Builder.Export)
	builder.POST("/:id/save", h.Builder.Save)
	builder.POST("/:id/reload", h.Builder.Reload)

	// Moderators and admins
	moderation := auth.Group("/moderation")
	moderation.Use(middleware.RequireModerator())
	moderation.GET("/pages", h.Admin.ListPages)
	moderation.POST("/pages/:id/approve", h.Admin.Approve)
	moderation.POST("/pages/:id/reject", h.Admin.Reject)
	moderation.POST("/pages/:id/unpublish", h.Admin.Unpublish)

	// Admin routes
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/stats", h.Admin.GetAdminStats)
	admin.GET("/users", h.Admin.ListAllUsers)
	admin.GET("/users/:id", h.Admin.GetUserDetails)
	admin.PUT("/users/:id/plan", h.Admin.SetUserPlan)
	admin.PUT("/users/:id/role", h.Admin.SetUserRole)
	admin.POST("/templates", h.Site.CreateTemplate)
	admin.PUT("/templates/:id/content", h.Site.PutTemplateContent)
	admin.PATCH("/templates/:id", h.Site.SetTemplateActive)
}
