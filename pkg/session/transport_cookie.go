package session

import (
	"net/http"
	"time"

	"github.com/rundetips/platform/pkg/cookie"
)

// CookieTransport carries the session token in a signed cookie.
type CookieTransport struct {
	cookies    *cookie.Manager
	cookieName string
	secure     bool
}

// NewCookieTransport creates a cookie-based token transport.
func NewCookieTransport(cookies *cookie.Manager, cookieName string, secure bool) *CookieTransport {
	if cookieName == "" {
		cookieName = DefaultConfig().CookieName
	}
	return &CookieTransport{
		cookies:    cookies,
		cookieName: cookieName,
		secure:     secure,
	}
}

// GetToken extracts and verifies the token from the session cookie
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	return t.cookies.GetSigned(r, t.cookieName)
}

// SetToken writes the signed session cookie
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	return t.cookies.SetSigned(w, t.cookieName, token,
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(t.secure),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
}

// ClearToken expires the session cookie
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookies.Delete(w, t.cookieName)
	return nil
}
