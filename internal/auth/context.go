package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/identity"
)

const (
	CtxUID    = "auth_uid"
	CtxEmail  = "auth_email"
	CtxClaims = "auth_claims"
)

// SetIdentity records a verified admin identity on the request.
func SetIdentity(c *gin.Context, claims *identity.Claims) {
	c.Set(CtxUID, claims.UID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxClaims, claims)
}

func IdentityFrom(c *gin.Context) (*identity.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*identity.Claims)
	return claims, ok && claims != nil
}

// UserEmail returns the email set by the gate or RequireAdmin.
func UserEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxEmail))
}
