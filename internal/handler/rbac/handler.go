package rbac

import (
	"github.com/gin-gonic/gin"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/rbac"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

// Handler serves the static role and permission catalogs and the
// default-permission resolver.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rg := r.Group("/rbac")
	{
		rg.GET("/roles", h.ListRoles)
		rg.GET("/permissions", h.ListPermissions)
		rg.GET("/roles/:role/permissions", h.ResolveDefaults)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	httputil.RespondWithSuccess(c, rbac.ListRoles())
}

func (h *Handler) ListPermissions(c *gin.Context) {
	httputil.RespondWithSuccess(c, rbac.ListPermissions())
}

// ResolveDefaults returns the default permission set for a role.
// Unknown roles resolve to the patient default, matching the resolver
// contract.
func (h *Handler) ResolveDefaults(c *gin.Context) {
	role := model.Role(c.Param("role"))
	httputil.RespondWithSuccess(c, gin.H{
		"role":        role,
		"permissions": rbac.ResolveDefaultPermissions(role),
	})
}
