package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls how session tokens are delivered to browsers.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes token as an HttpOnly, SameSite=Strict cookie whose
// Max-Age matches the token lifetime.
func SetSessionCookie(c *gin.Context, cfg CookieConfig, token Token) {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.Name,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
