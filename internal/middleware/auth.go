package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/auth"
	apperrors "github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/httputil"
)

const ContextIdentity = "identity"

type AuthMiddleware struct {
	authService *auth.Service
	claims      *cache.Cache
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		claims:      cache.New(5*time.Minute, 15*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets the caller identity
// in context. Validated claims are cached briefly to keep hot admin
// screens from re-parsing on every request.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		var claims *model.TokenClaims
		if cached, ok := m.claims.Get(parts[1]); ok {
			claims = cached.(*model.TokenClaims)
		} else {
			var err error
			claims, err = m.authService.ValidateToken(c.Request.Context(), parts[1])
			if err != nil {
				httputil.RespondWithError(c, apperrors.Unauthorized(err))
				c.Abort()
				return
			}
			m.claims.Set(parts[1], claims, cache.DefaultExpiration)
		}

		c.Set(ContextIdentity, model.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// RequireAdmin rejects callers whose role is not admin. Directory
// operations are admin-only.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			c.JSON(http.StatusForbidden, httputil.Response{
				Success: false,
				Error: &httputil.Error{
					Code:    http.StatusForbidden,
					Message: "admin role required",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFromContext extracts the authenticated identity.
func IdentityFromContext(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(ContextIdentity)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}
