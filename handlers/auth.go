package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/middleware"
	"github.com/yourusername/invoice-ledger/models"
)

type AuthHandler struct {
	Auth  *auth.Authenticator
	Users auth.UserStore
	Cfg   *config.Config
}

func NewAuthHandler(users auth.UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Auth:  auth.NewAuthenticator(users),
		Users: users,
		Cfg:   cfg,
	}
}

// LoginRequest accepts the OAuth2 password form or the same fields as JSON.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RefreshToken request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login exchanges a username and password for tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	user, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.Error(err)
		return
	}

	h.issueTokens(c, user)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	claims, err := middleware.ParseToken(req.RefreshToken, h.Cfg.JWTRefreshSecret)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid or expired refresh token").
			Mark(ierr.ErrUnauthorized))
		return
	}

	// the user must still exist and be active
	user, err := h.Users.FindByUsername(c.Request.Context(), claims.Subject)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("User not found").
			Mark(ierr.ErrUnauthorized))
		return
	}

	if !user.IsActive {
		c.Error(ierr.NewError("inactive user").
			WithHint("User account is inactive").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	h.issueTokens(c, user)
}

// VerifyToken reports the principal behind a valid access token.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	user, ok := middleware.Principal(c)
	if !ok {
		c.Error(ierr.NewError("no principal in context").
			WithHint("Not authenticated").
			Mark(ierr.ErrUnauthorized))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) {
	accessToken, err := middleware.GenerateToken(user.Username, user.Role, h.Cfg.JWTSecret, h.Cfg.AccessTokenTTL)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to generate access token").
			Mark(ierr.ErrSystem))
		return
	}

	refreshToken, err := middleware.GenerateToken(user.Username, user.Role, h.Cfg.JWTRefreshSecret, h.Cfg.RefreshTokenTTL)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to generate refresh token").
			Mark(ierr.ErrSystem))
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Cfg.AccessTokenTTL.Seconds()),
	})
}
