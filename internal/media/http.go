package media

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler accepts a nil service; every upload is then answered with 503.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) upload(c *gin.Context) {
	if h.svc == nil {
		httpapi.WriteError(c, h.log, ErrUploadsOff)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxBytes()+formOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpapi.WriteError(c, h.log, ErrFileTooBig)
			return
		}
		httpapi.WriteError(c, h.log, ErrNoFile)
		return
	}

	out, err := h.svc.UploadImage(c.Request.Context(), fh)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.POST("/uploads", admin, h.upload)
}
