package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/auth"
	apperrors "github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rg := r.Group("/auth")
	{
		rg.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(err))
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}
