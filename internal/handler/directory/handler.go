package directory

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretrip/coordination-api/internal/middleware"
	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/directory"
	apperrors "github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

type Handler struct {
	service directory.Servicer
}

func NewHandler(service directory.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts directory routes. The admin group must already
// be gated by the admin-only middleware; the profile group only needs
// authentication.
func (h *Handler) RegisterRoutes(admin, authed *gin.RouterGroup) {
	users := admin.Group("/users")
	{
		users.GET("", h.ListProfiles)
		users.POST("", h.CreateProfile)
		users.GET("/:id", h.GetProfile)
		users.PUT("/:id", h.UpdateProfile)
		users.PATCH("/:id/status", h.SetStatus)
		users.DELETE("/:id", h.DeleteProfile)
	}

	authed.GET("/profile", h.GetSelf)
	authed.PUT("/profile", h.UpdateSelf)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	var filter model.DirectoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid filter parameters", err))
		return
	}

	profiles, err := h.service.ListProfiles(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profiles)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user ID", err))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) CreateProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), identity, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user ID", err))
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), identity, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) SetStatus(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user ID", err))
		return
	}

	var req model.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), identity, id, req.Status); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "status": req.Status})
}

// DeleteProfile requires the X-Confirm-Delete header as the explicit
// confirmation step; deletion is irreversible.
func (h *Handler) DeleteProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user ID", err))
		return
	}

	if c.GetHeader("X-Confirm-Delete") != "true" {
		httputil.RespondWithError(c, apperrors.BadRequest("deletion must be confirmed", nil))
		return
	}

	if err := h.service.DeleteProfile(c.Request.Context(), identity, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) GetSelf(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) UpdateSelf(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.UpdateSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	profile, err := h.service.UpdateSelf(c.Request.Context(), identity, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}
