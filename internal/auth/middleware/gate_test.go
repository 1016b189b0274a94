package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/identity"
	"github.com/devfolio/portfolio-backend/internal/identity/identitytest"
)

const (
	adminToken    = "admin.jwt.token"
	outsiderToken = "outsider.jwt.token"
	expiredToken  = "expired.jwt.token"
)

func newTestAuthenticator() (*auth.Authenticator, *identitytest.Verifier) {
	v := identitytest.NewVerifier().
		Allow(adminToken, "Owner@Example.com").
		Allow(outsiderToken, "someone@example.com").
		Fail(expiredToken, identity.ErrTokenExpired)
	return auth.NewAuthenticator(v, auth.NewPolicy([]string{"owner@example.com"}), true), v
}

func newGateRouter(mode GateMode) *gin.Engine {
	gin.SetMode(gin.TestMode)

	authn, _ := newTestAuthenticator()
	gate := NewGate(GateOptions{
		Mode:              mode,
		CookieName:        "auth_token",
		LoginPath:         "/auth/admin",
		PublicPrefixes:    []string{"/auth/admin", "/admin/login", "/api/public"},
		ProtectedPrefixes: []string{"/admin", "/api/admin"},
	}, authn, zap.NewNop())

	r := gin.New()
	r.Use(gate.Handler())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"email": auth.UserEmail(c)}) }
	for _, p := range []string{"/admin/projects", "/admin/login", "/administrator", "/auth/admin", "/api/projects", "/api/admin/contacts", "/api/public/info"} {
		r.GET(p, ok)
	}
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func withCookie(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestGate_RedirectsPageWithoutCookie(t *testing.T) {
	r := newGateRouter(GateVerify)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/admin/projects", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/admin", loc.Path)
	assert.Equal(t, "/admin/projects", loc.Query().Get("callbackUrl"))
	assert.Empty(t, rr.Header().Get("Set-Cookie"))
}

func TestGate_AdmitsUnprotectedAndPublicPaths(t *testing.T) {
	r := newGateRouter(GateVerify)

	for _, p := range []string{"/auth/admin", "/admin/login", "/administrator", "/api/projects", "/api/public/info"} {
		rr := serve(r, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rr.Code, p)
	}
}

func TestGate_API(t *testing.T) {
	r := newGateRouter(GateVerify)

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		message string
	}{
		{
			name:    "missing credential",
			req:     httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil),
			status:  http.StatusUnauthorized,
			message: "Authentication token is missing",
		},
		{
			name:    "expired bearer",
			req:     withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), expiredToken),
			status:  http.StatusUnauthorized,
			message: "Token expired. Please sign in again.",
		},
		{
			name:    "valid token, not on allow-list",
			req:     withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), outsiderToken),
			status:  http.StatusForbidden,
			message: "Insufficient permissions",
		},
		{
			name:    "garbage bearer",
			req:     withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), "garbage"),
			status:  http.StatusUnauthorized,
			message: "Invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(r, tt.req)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorBody(t, rr))
		})
	}
}

func TestGate_AdmitsAdmin(t *testing.T) {
	r := newGateRouter(GateVerify)

	for _, req := range []*http.Request{
		withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), adminToken),
		withCookie(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), adminToken),
		withCookie(httptest.NewRequest(http.MethodGet, "/admin/projects", nil), adminToken),
	} {
		rr := serve(r, req)
		require.Equal(t, http.StatusOK, rr.Code, req.URL.Path)
		assert.Contains(t, rr.Body.String(), "Owner@Example.com")
	}
}

func TestGate_PageWithInvalidCookieClearsItAndRedirects(t *testing.T) {
	r := newGateRouter(GateVerify)

	rr := serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/admin/projects", nil), expiredToken))

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestGate_PageBearerHeaderIsIgnored(t *testing.T) {
	r := newGateRouter(GateVerify)

	rr := serve(r, withBearer(httptest.NewRequest(http.MethodGet, "/admin/projects", nil), adminToken))
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
}

func TestGate_PageForbiddenIdentity(t *testing.T) {
	r := newGateRouter(GateVerify)

	rr := serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/admin/projects", nil), outsiderToken))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGate_PresenceMode(t *testing.T) {
	r := newGateRouter(GatePresence)

	rr := serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/admin/projects", nil), "anything"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/admin/projects", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
}

func TestGate_Route(t *testing.T) {
	g := NewGate(GateOptions{
		PublicPrefixes:    []string{"/auth/admin", "/admin/login"},
		ProtectedPrefixes: []string{"/admin", "/api/admin"},
	}, nil, zap.NewNop())

	assert.Equal(t, Protect, g.Route("/admin"))
	assert.Equal(t, Protect, g.Route("/admin/"))
	assert.Equal(t, Protect, g.Route("/api/admin/contacts"))
	assert.Equal(t, Protect, g.Route("/admin/login/../projects"))
	assert.Equal(t, Admit, g.Route("/admin/login"))
	assert.Equal(t, Admit, g.Route("/administrator"))
	assert.Equal(t, Admit, g.Route("/api/projects"))
}
