package contacts

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the contact form endpoint; limit throttles it.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/contact", limit, h.submit)
}

// RegisterAdmin attaches the submission listing behind admin.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/contacts", admin, h.list)
}
