package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/audit"
	apperrors "github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.ListLogs)
}

func (h *Handler) ListLogs(c *gin.Context) {
	var filter model.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid filter parameters", err))
		return
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	logs, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Transport(err))
		return
	}

	httputil.RespondWithSuccess(c, logs)
}
