package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"kashpages/internal/apierr"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/store"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer = "https://accounts.google.com"
	stateCookie  = "oauth_state"
)

// Google signs users in with their Google account through OIDC.
type Google struct {
	oauth            *oauth2.Config
	frontendRedirect string
	secureCookie     bool

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewGoogle(clientID, clientSecret, redirectURL, frontendRedirect string, secureCookie bool) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		frontendRedirect: frontendRedirect,
		secureCookie:     secureCookie,
	}
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// idVerifier discovers Google's keys on first use and keeps the verifier.
func (g *Google) idVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifier != nil {
		return g.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, err
	}
	g.verifier = provider.Verifier(&oidc.Config{ClientID: g.oauth.ClientID})
	return g.verifier, nil
}

func (g *Google) verify(ctx context.Context, rawIDToken string) (*googleIDClaims, error) {
	verifier, err := g.idVerifier(ctx)
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}
	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	return &claims, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GoogleStart GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		_ = c.Error(apierr.NotFound("Google sign-in is not configured"))
		return
	}
	state, err := randomState()
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	c.SetCookie(stateCookie, state, 300, "/", "", h.google.secureCookie, true)
	c.Redirect(http.StatusFound, h.google.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GoogleCallback GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		_ = c.Error(apierr.NotFound("Google sign-in is not configured"))
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		_ = c.Error(apierr.BadRequest("missing code/state", nil))
		return
	}
	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		_ = c.Error(apierr.BadRequest("invalid oauth state", nil))
		return
	}

	ctx := c.Request.Context()
	tok, err := h.google.oauth.Exchange(ctx, code)
	if err != nil {
		_ = c.Error(apierr.Unauthorized("failed to exchange code"))
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		_ = c.Error(apierr.Unauthorized("missing id_token"))
		return
	}
	claims, err := h.google.verify(ctx, rawIDToken)
	if err != nil {
		_ = c.Error(apierr.Unauthorized(err.Error()))
		return
	}

	user, err := h.findOrCreateGoogleUser(ctx, claims)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tokenString, err := h.issuer.Issue(access.FromUser(*user))
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}

	if h.google.frontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": tokenString})
		return
	}
	c.Redirect(http.StatusFound, h.google.frontendRedirect+"?token="+url.QueryEscape(tokenString))
}

// findOrCreateGoogleUser matches by Google subject, then links an existing
// account with the same email, and otherwise creates one.
func (h *Handler) findOrCreateGoogleUser(ctx context.Context, gc *googleIDClaims) (*users.User, error) {
	if u, err := h.accounts.ByGoogleSub(ctx, gc.Sub); err == nil {
		return u, nil
	} else if !persist.IsNotFound(err) {
		return nil, err
	}

	u, err := h.accounts.ByEmail(ctx, gc.Email)
	switch {
	case err == nil:
		if u.GoogleSub == nil {
			sub := gc.Sub
			if err := h.accounts.Update(ctx, u.ID, store.Fields{"google_sub": sub}); err != nil {
				return nil, err
			}
			u.GoogleSub = &sub
		}
		return u, nil
	case !persist.IsNotFound(err):
		return nil, err
	}

	sub := gc.Sub
	user := &users.User{
		Name:         firstNonEmpty(gc.GivenName, gc.Name),
		Email:        gc.Email,
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		Role:         users.RoleUser,
		Plan:         plans.TierFree,
	}
	if err := h.accounts.Create(ctx, user); err != nil {
		return nil, err
	}
	h.log.Info("User registered with Google", "user_id", user.ID)
	return user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
