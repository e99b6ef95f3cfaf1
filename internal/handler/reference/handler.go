package reference

import (
	"github.com/gin-gonic/gin"

	"github.com/caretrip/coordination-api/internal/service/reference"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reference/countries", h.ListCountries)
}

func (h *Handler) ListCountries(c *gin.Context) {
	httputil.RespondWithSuccess(c, reference.ListCountryGroups())
}
