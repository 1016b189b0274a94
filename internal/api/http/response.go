package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/api/http/middleware"
	"github.com/devfolio/portfolio-backend/internal/apperror"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError aborts the request with the status and public message of err.
// Internal and unavailable errors are logged with their full cause.
func WriteError(c *gin.Context, log *zap.Logger, err error) {
	status := apperror.HTTPStatus(err)

	switch apperror.KindOf(err) {
	case apperror.KindInternal, apperror.KindUnavailable:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	default:
		log.Debug("request rejected",
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: apperror.PublicMessage(err)})
}
