package middleware

import (
	"context"
	"strings"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/users"
	"kashpages/internal/infra/token"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// UserLookup reloads the stored user behind a token so role and plan changes
// apply without a new login.
type UserLookup func(ctx context.Context, id string) (*users.User, error)

// Auth requires a valid bearer token and stores the caller's principal in the context.
// When lookup is nil the principal is taken from the token claims alone.
func Auth(issuer *token.Issuer, lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apierr.Unauthorized("Authorization header missing"))
			return
		}
		raw := strings.TrimPrefix(authHeader, "Bearer ")
		if raw == authHeader || strings.TrimSpace(raw) == "" {
			abort(c, apierr.Unauthorized("Bearer token malformed"))
			return
		}

		p, err := issuer.Parse(strings.TrimSpace(raw))
		if err != nil {
			abort(c, apierr.Unauthorized("Invalid or expired token"))
			return
		}
		if lookup != nil {
			u, err := lookup(c.Request.Context(), p.UserID)
			if err != nil {
				abort(c, apierr.Unauthorized("Account no longer exists"))
				return
			}
			p = access.FromUser(*u)
		}

		c.Set(principalKey, p)
		c.Set("user_id", p.UserID)
		c.Next()
	}
}

// RequireRole lets the request through when the principal passes allowed.
func RequireRole(allowed func(access.Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			abort(c, apierr.Unauthorized("Not signed in"))
			return
		}
		if !allowed(p) {
			abort(c, apierr.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(access.Principal.IsAdmin)
}

func RequireModerator() gin.HandlerFunc {
	return RequireRole(access.Principal.CanModerate)
}

// CurrentPrincipal returns the principal set by Auth.
func CurrentPrincipal(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok && !p.IsZero()
}

// SetPrincipal is used by tests and internal callers that authenticate another way.
func SetPrincipal(c *gin.Context, p access.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
}

func abort(c *gin.Context, e *apierr.AppError) {
	c.AbortWithStatusJSON(e.Code, gin.H{"error": e.Message})
}
