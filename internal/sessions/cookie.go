package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieName matches what the frontend expects.
const CookieName = "sessionId"

// CookieOptions controls how the session cookie is issued. Production uses
// Secure + SameSite=None so the cross-origin frontend can send it; local
// development stays on Lax over plain HTTP.
type CookieOptions struct {
	MaxAge int
	Secure bool
}

// SetCookie writes the session cookie on the response.
func SetCookie(c *gin.Context, sessionID string, opts CookieOptions) {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(CookieName, sessionID, opts.MaxAge, "/", "", opts.Secure, true)
}

// ClearCookie expires the session cookie.
func ClearCookie(c *gin.Context, opts CookieOptions) {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(CookieName, "", -1, "/", "", opts.Secure, true)
}

// FromRequest reads the session id cookie, returning "" when absent.
func FromRequest(c *gin.Context) string {
	id, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return id
}
