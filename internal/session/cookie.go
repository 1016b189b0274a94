package session

import (
	"net/http"
	"net/url"
	"time"
)

// CookieStore keeps the auth cookie in a client cookie jar with the same
// attributes the server sets.
type CookieStore struct {
	jar  http.CookieJar
	base *url.URL
	name string
}

func NewCookieStore(jar http.CookieJar, base *url.URL, name string) *CookieStore {
	return &CookieStore{jar: jar, base: base, name: name}
}

func (s *CookieStore) SetAuthCookie(token string, ttl time.Duration) {
	s.jar.SetCookies(s.base, []*http.Cookie{s.cookie(token, int(ttl.Seconds()))})
}

func (s *CookieStore) RemoveAuthCookie() {
	s.jar.SetCookies(s.base, []*http.Cookie{s.cookie("", -1)})
}

// Token returns the cookie value the jar would send, or "".
func (s *CookieStore) Token() string {
	for _, c := range s.jar.Cookies(s.base) {
		if c.Name == s.name {
			return c.Value
		}
	}
	return ""
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
