package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-backend/internal/identity"
	"github.com/devfolio/portfolio-backend/internal/identity/identitytest"
)

func TestPolicy_IsAllowedAdmin(t *testing.T) {
	p := NewPolicy([]string{" Owner@Example.com", "", "second@example.com "})

	assert.Equal(t, 2, p.Len())
	assert.True(t, p.IsAllowedAdmin("owner@example.com"))
	assert.True(t, p.IsAllowedAdmin("OWNER@EXAMPLE.COM"))
	assert.True(t, p.IsAllowedAdmin("second@example.com"))
	assert.False(t, p.IsAllowedAdmin("intruder@example.com"))
	assert.False(t, p.IsAllowedAdmin(""))
	assert.False(t, p.IsAllowedAdmin("   "))
}

func TestSetAuthCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetAuthCookie(rr, "", "tok", time.Hour)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth_token", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestRemoveAuthCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	RemoveAuthCookie(rr, "auth_token")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req, "auth_token", true))

	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "auth_token", true))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req, "auth_token", true))
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "auth_token", false))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "auth_token", true))
}

func TestAuthenticator(t *testing.T) {
	v := identitytest.NewVerifier().
		Allow("a", "owner@example.com").
		Allow("b", "other@example.com").
		AllowClaims("c", identity.Claims{UID: "no-email"})
	authn := NewAuthenticator(v, NewPolicy([]string{"owner@example.com"}), true)
	ctx := context.Background()

	claims, err := authn.Authenticate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.True(t, v.LastOptions().CheckRevoked)

	_, err = authn.Authenticate(ctx, "b")
	assert.ErrorIs(t, err, ErrInsufficientPermissions)

	_, err = authn.Authenticate(ctx, "c")
	assert.ErrorIs(t, err, ErrInsufficientPermissions)

	_, err = authn.Authenticate(ctx, "")
	assert.ErrorIs(t, err, identity.ErrTokenMissing)

	claims, err = authn.Identify(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", claims.Email)
}
