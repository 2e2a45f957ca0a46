package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jwtauthenticator/internal/middleware"
	"jwtauthenticator/internal/service"
	"jwtauthenticator/internal/token"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	FreshLogin(c *gin.Context)
	Refresh(c *gin.Context)
	ValidateToken(c *gin.Context)
	ValidateFreshToken(c *gin.Context)
	Logout(c *gin.Context)
	ListUsers(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	cookies     *token.CookieWriter
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, cookies *token.CookieWriter, log *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, cookies: cookies, log: log}
}

// CredentialsRequest carries a username/password pair for the register,
// login and fresh_login endpoints. Its contents never reach logs or
// responses.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_credentials"})
		return
	}

	_, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate_username"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_credentials"})
		default:
			h.log.Error("Failed to register user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User Created"})
}

func (h *authHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
		return
	}

	session, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
			return
		}
		h.log.Error("Failed to login user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	h.cookies.SetAccessCookies(c, session.Access)
	h.cookies.SetRefreshCookies(c, session.Refresh)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    session.User,
	})
}

func (h *authHandler) FreshLogin(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
		return
	}

	session, err := h.authService.FreshLogin(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
			return
		}
		h.log.Error("Failed to re-authenticate user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	h.cookies.SetAccessCookies(c, session.Access)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    session.User,
	})
}

func (h *authHandler) Refresh(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)

	access, err := h.authService.Refresh(claims)
	if err != nil {
		h.log.Error("Failed to refresh access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh"})
		return
	}

	h.cookies.SetAccessCookies(c, access)
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

func (h *authHandler) ValidateToken(c *gin.Context) {
	h.respondValidated(c)
}

func (h *authHandler) ValidateFreshToken(c *gin.Context) {
	h.respondValidated(c)
}

// respondValidated answers a validate endpoint once the guard has accepted
// the token. The user row is re-read so the response carries the stored
// identity, not just the token payload.
func (h *authHandler) respondValidated(c *gin.Context) {
	username := c.MustGet(middleware.ContextUsername).(string)

	user, err := h.authService.GetUser(username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_valid": true,
		"user":     user.Public(),
	})
}

func (h *authHandler) Logout(c *gin.Context) {
	// Tokens are client-held only, so logout is just removing the cookies.
	// Nothing here can fail.
	h.cookies.ClearCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *authHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		h.log.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
