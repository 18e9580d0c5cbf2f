package auth

import (
	"net/http"
	"strings"

	"kashpages/internal/apierr"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/access"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/users"
	"kashpages/internal/infra/token"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
	"kashpages/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	accounts *persist.Accounts
	issuer   *token.Issuer
	google   *Google
	log      *logger.Logger
	// cost is the bcrypt cost; tests lower it.
	cost int
}

// NewHandler wires the account endpoints. google may be nil when sign-in with
// Google is not configured.
func NewHandler(accounts *persist.Accounts, issuer *token.Issuer, google *Google, log *logger.Logger) *Handler {
	return &Handler{accounts: accounts, issuer: issuer, google: google, log: log.With("handler", "auth"), cost: bcrypt.DefaultCost}
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Register POST /register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=120"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"max=32"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	if !isPasswordStrong(input.Password) {
		_ = c.Error(apierr.BadRequest("Password must be at least 8 characters long and contain both letters and numbers", nil))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), h.cost)
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	pw := string(hashed)
	user := users.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		Password:     &pw,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
		Plan:         plans.TierFree,
	}
	if err := h.accounts.Create(c.Request.Context(), &user); err != nil {
		_ = c.Error(err)
		return
	}
	h.log.Info("User registered", "user_id", user.ID, "handle", user.Handle)

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}

	user, err := h.accounts.ByEmail(c.Request.Context(), input.Email)
	if persist.IsNotFound(err) {
		_ = c.Error(apierr.Unauthorized("Invalid credentials"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	if user.Password == nil || *user.Password == "" {
		_ = c.Error(apierr.Unauthorized("This account uses Google sign-in"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		_ = c.Error(apierr.Unauthorized("Invalid credentials"))
		return
	}

	h.respondWithToken(c, http.StatusOK, *user)
}

// ChangePassword POST /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apierr.Validation(err))
		return
	}
	if !isPasswordStrong(body.NewPassword) {
		_ = c.Error(apierr.BadRequest("New password must be at least 8 characters with letters and numbers", nil))
		return
	}

	user, err := h.accounts.ByID(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// Google-only accounts may set a first password without an old one.
	if user.Password != nil && *user.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(body.OldPassword)); err != nil {
			_ = c.Error(apierr.Unauthorized("Old password is incorrect"))
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), h.cost)
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	if err := h.accounts.Update(c.Request.Context(), user.ID, store.Fields{"password": string(hashed)}); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user users.User) {
	tok, err := h.issuer.Issue(access.FromUser(user))
	if err != nil {
		_ = c.Error(apierr.Internal(err))
		return
	}
	c.JSON(status, sessionResponse{Token: tok, User: user})
}
