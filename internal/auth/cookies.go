package auth

import (
	"net/http"
	"time"

	"github.com/vidstream/backend/internal/models"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CookieWriter writes the session credentials as cookies. Secure is on
// except for local development over plain HTTP.
type CookieWriter struct {
	Secure bool
}

func (c CookieWriter) cookie(name, value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if !c.Secure {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	}
}

// SetSession writes both credentials with expiries matching the tokens.
func (c CookieWriter) SetSession(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, c.cookie(AccessCookieName, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, c.cookie(RefreshCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

// Clear expires both credential cookies.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		cookie := c.cookie(name, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}
