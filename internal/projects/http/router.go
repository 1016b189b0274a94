package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. admin guards
// every mutating route.
func (h *Handler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.GET("/slug/:slug", h.getBySlug)
	rg.POST("", admin, h.create)
	rg.PUT("/:id", admin, h.update)
	rg.DELETE("/:id", admin, h.delete)
}
