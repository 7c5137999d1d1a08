package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type" // "cookie" or "bearer"
	ContextKeyToken    = "auth_token"
)

// AuthType indicates how the caller presented its token.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeCookie AuthType = "cookie"
	AuthTypeBearer AuthType = "bearer"
)

// Error bodies returned by RequireAuth.
const (
	msgTokenRequired = "Access token required"
	msgTokenInvalid  = "Invalid or expired token"
)

// Middleware authenticates requests by verifying their session token.
type Middleware struct {
	issuer     TokenIssuer
	cookieName string
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(issuer TokenIssuer, cookieName string) *Middleware {
	return &Middleware{
		issuer:     issuer,
		cookieName: cookieName,
	}
}

// RequireAuth rejects requests without a token (401) or with a token that
// fails verification (403). On success the caller identity is stored in the
// gin context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, authType := m.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenRequired})
			return
		}

		identity, err := m.issuer.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgTokenInvalid})
			return
		}

		c.Set(ContextKeyUserID, identity.UserID)
		c.Set(ContextKeyUsername, identity.Username)
		c.Set(ContextKeyAuthType, authType)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// extractToken prefers the session cookie and falls back to a Bearer header
// for non-browser clients.
func (m *Middleware) extractToken(c *gin.Context) (string, AuthType) {
	return TokenFromRequest(c, m.cookieName)
}

// TokenFromRequest returns the raw session token carried by the request, if
// any, and how it was presented.
func TokenFromRequest(c *gin.Context, cookieName string) (string, AuthType) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, AuthTypeCookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", AuthTypeNone
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", AuthTypeNone
	}
	return strings.TrimSpace(parts[1]), AuthTypeBearer
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// GetToken retrieves the raw token the request was authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}
