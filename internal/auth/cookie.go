package auth

import (
	"net/http"
	"time"
)

const DefaultCookieName = "auth_token"

// SetAuthCookie stores the session token with max-age ttl (rounded down to
// whole seconds, at least one).
func SetAuthCookie(w http.ResponseWriter, name, token string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(name),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second).UTC(),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// RemoveAuthCookie expires the session cookie immediately.
func RemoveAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(name),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest returns the session token, preferring an
// "Authorization: Bearer" header over the cookie when allowBearer is set.
func TokenFromRequest(r *http.Request, name string, allowBearer bool) string {
	if allowBearer {
		if tok := bearerToken(r.Header.Get("Authorization")); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie(cookieName(name)); err == nil {
		return c.Value
	}
	return ""
}

func bearerToken(header string) string {
	if len(header) > 7 && (header[:7] == "Bearer " || header[:7] == "bearer ") {
		return header[7:]
	}
	return ""
}

func cookieName(name string) string {
	if name == "" {
		return DefaultCookieName
	}
	return name
}
