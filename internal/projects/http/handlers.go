package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) getBySlug(c *gin.Context) {
	p, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, h.log, apperror.Validation("invalid body"))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, projectResp{Success: true, Project: *p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, h.log, apperror.Validation("invalid body"))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, projectResp{Success: true, Project: *p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deleteResp{Success: true, Message: "Project deleted successfully."})
}
