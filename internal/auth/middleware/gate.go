package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/identity"
)

type GateMode string

const (
	// GateVerify verifies the credential and the allow-list at the edge.
	GateVerify GateMode = "verify"
	// GatePresence only checks that a credential is present and leaves
	// verification to the handlers.
	GatePresence GateMode = "presence"
)

type GateOptions struct {
	Mode              GateMode
	CookieName        string
	LoginPath         string
	PublicPrefixes    []string
	ProtectedPrefixes []string
}

// Decision is the outcome of routing a path through the gate before any
// credential is looked at.
type Decision int

const (
	Admit Decision = iota
	Protect
)

type Gate struct {
	opts GateOptions
	auth *auth.Authenticator
	log  *zap.Logger
}

func NewGate(opts GateOptions, authn *auth.Authenticator, log *zap.Logger) *Gate {
	if opts.Mode == "" {
		opts.Mode = GateVerify
	}
	return &Gate{opts: opts, auth: authn, log: log}
}

// Route applies the public and protected prefix rules in order.
func (g *Gate) Route(p string) Decision {
	p = cleanPath(p)
	for _, prefix := range g.opts.PublicPrefixes {
		if hasPathPrefix(p, prefix) {
			return Admit
		}
	}
	for _, prefix := range g.opts.ProtectedPrefixes {
		if hasPathPrefix(p, prefix) {
			return Protect
		}
	}
	return Admit
}

// LoginURL is where page requests without a usable session are sent.
func (g *Gate) LoginURL(original string) string {
	u := url.URL{Path: g.opts.LoginPath, RawQuery: url.Values{"callbackUrl": {original}}.Encode()}
	return u.String()
}

func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := cleanPath(c.Request.URL.Path)
		if g.Route(p) == Admit {
			c.Next()
			return
		}

		api := isAPIPath(p)
		token := auth.TokenFromRequest(c.Request, g.opts.CookieName, api)
		if token == "" {
			g.reject(c, p, api, identity.ErrTokenMissing)
			return
		}

		if g.opts.Mode == GatePresence {
			c.Next()
			return
		}

		claims, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			g.reject(c, p, api, err)
			return
		}

		auth.SetIdentity(c, claims)
		c.Next()
	}
}

func (g *Gate) reject(c *gin.Context, p string, api bool, err error) {
	if api || apperror.KindOf(err) != apperror.KindAuthentication {
		httpapi.WriteError(c, g.log, err)
		return
	}

	// invalid cookies are cleared before redirecting
	if !errors.Is(err, identity.ErrTokenMissing) {
		auth.RemoveAuthCookie(c.Writer, g.opts.CookieName)
	}
	g.log.Debug("gate redirect", zap.String("path", p), zap.Error(err))
	c.Redirect(http.StatusTemporaryRedirect, g.LoginURL(p))
	c.Abort()
}

// hasPathPrefix matches whole path segments: "/admin" matches "/admin" and
// "/admin/projects" but not "/administrator".
func hasPathPrefix(p, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func isAPIPath(p string) bool {
	return hasPathPrefix(p, "/api")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
