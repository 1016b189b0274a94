package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/auth"
)

// RequireAdmin guards admin-only API routes. It accepts a bearer token or
// the session cookie and reuses the identity when the gate already verified
// one for this request.
func RequireAdmin(authn *auth.Authenticator, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := auth.IdentityFrom(c); ok && authn.IsAllowedAdmin(claims.Email) {
			c.Next()
			return
		}

		token := auth.TokenFromRequest(c.Request, cookieName, true)
		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			httpapi.WriteError(c, log, err)
			return
		}

		auth.SetIdentity(c, claims)
		c.Next()
	}
}

// RequireIdentity is RequireAdmin without the allow-list check.
func RequireIdentity(authn *auth.Authenticator, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.IdentityFrom(c); ok {
			c.Next()
			return
		}

		token := auth.TokenFromRequest(c.Request, cookieName, true)
		claims, err := authn.Identify(c.Request.Context(), token)
		if err != nil {
			httpapi.WriteError(c, log, err)
			return
		}

		auth.SetIdentity(c, claims)
		c.Next()
	}
}
