package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/auth/service"
)

// SignIn exchanges a provider ID token for the session cookie.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		httpapi.WriteError(c, h.log, apperror.Validation("idToken is required"))
		return
	}

	sess, err := h.sessions.SignIn(c.Request.Context(), strings.TrimSpace(req.IDToken))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	h.writeSession(c, sess, false)
}

// Login is the username/password flow of the local provider.
func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, h.log, apperror.Validation("invalid body"))
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	h.writeSession(c, sess, true)
}

func (h *Handler) Refresh(c *gin.Context) {
	token := auth.TokenFromRequest(c.Request, h.cookieName, true)

	sess, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	h.writeSession(c, sess, true)
}

// SignOut always clears the cookie, even when revocation fails.
func (h *Handler) SignOut(c *gin.Context) {
	token := auth.TokenFromRequest(c.Request, h.cookieName, true)
	auth.RemoveAuthCookie(c.Writer, h.cookieName)

	if err := h.sessions.SignOut(c.Request.Context(), token); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	token := auth.TokenFromRequest(c.Request, h.cookieName, true)

	claims, admin, err := h.sessions.Me(c.Request.Context(), token)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, meResp{UID: claims.UID, Email: claims.Email, Admin: admin})
}

func (h *Handler) writeSession(c *gin.Context, sess *service.Session, withToken bool) {
	auth.SetAuthCookie(c.Writer, h.cookieName, sess.Token, sess.MaxAge)

	resp := sessionResp{
		Success:   true,
		Email:     sess.Claims.Email,
		ExpiresAt: sess.ExpiresAt,
	}
	if withToken {
		resp.Token = sess.Token
	}
	c.JSON(http.StatusOK, resp)
}
