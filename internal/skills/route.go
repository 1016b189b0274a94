package skills

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.POST("", admin, h.create)
	rg.PUT("/:id", admin, h.update)
	rg.DELETE("/:id", admin, h.delete)
}
