package http

import "github.com/gin-gonic/gin"

// Register attaches session routes. limit guards the credential endpoints.
func (h *Handler) Register(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/session", limit, h.SignIn)
	rg.DELETE("/session", h.SignOut)
	rg.POST("/login", limit, h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.GET("/me", h.Me)
}
