package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jwtauthenticator/internal/models"
	"jwtauthenticator/internal/token"
)

// AuthRequirement selects which token a route demands before its handler
// runs.
type AuthRequirement int

const (
	RequireNone AuthRequirement = iota
	RequireAccessToken
	RequireFreshAccessToken
	RequireRefreshToken
)

// Context keys populated by RequireAuth on success.
const (
	ContextClaims   = "claims"
	ContextUsername = "username"
)

// ClaimsFromContext returns the claims a guard stored for this request.
// Only call it from handlers behind a RequireAuth middleware.
func ClaimsFromContext(c *gin.Context) *models.Claims {
	return c.MustGet(ContextClaims).(*models.Claims)
}

// RequireAuth creates a Gin middleware enforcing the given requirement: it
// reads the matching token cookie, verifies signature and expiry, checks the
// X-CSRF-TOKEN header against the CSRF value signed into the token, and for
// RequireFreshAccessToken additionally demands the fresh flag. Any failure
// aborts with 401 and a generic message.
func RequireAuth(tm *token.Manager, requirement AuthRequirement, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if requirement == RequireNone {
			c.Next()
			return
		}

		cookieName := token.AccessCookieName
		wantKind := models.TokenKindAccess
		if requirement == RequireRefreshToken {
			cookieName = token.RefreshCookieName
			wantKind = models.TokenKindRefresh
		}

		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			c.Abort()
			return
		}

		claims, err := tm.Decode(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				c.Abort()
				return
			}
			logger.Debug("Rejected malformed token", zap.String("cookie", cookieName))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if claims.Kind != wantKind {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if c.GetHeader(token.CSRFHeader) != claims.CSRF {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "CSRF token mismatch"})
			c.Abort()
			return
		}

		if requirement == RequireFreshAccessToken && !claims.Fresh {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Fresh token required"})
			c.Abort()
			return
		}

		// Set user claims in context
		c.Set(ContextClaims, claims)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}
