package http

import (
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/projects/domain"
	"github.com/devfolio/portfolio-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
	log *zap.Logger
}

func New(svc *service.ProjectService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type projectResp struct {
	Success bool `json:"success"`
	domain.Project
}

type deleteResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
