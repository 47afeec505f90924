package middlewares

import (
	"errors"
	"strings"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set on admitted requests
const (
	ContextKeyClaims    = "auth_claims"
	ContextKeyUserID    = "user_id"
	ContextKeyUsername  = "username"
	ContextKeyUserRole  = "user_role"
	ContextKeyRoleLevel = "role_level"
)

// AuthRequired middleware verifies the bearer token and admits the request
// with its claims attached. Every token failure gets the same 401 body; the
// specific reason is only logged.
func AuthRequired(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("auth")

	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			reject(c, log, auth.ReasonNoToken, "", models.ErrNoToken)
			return
		}

		claims, err := services.TokenService().Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrSecretNotConfigured) {
				log.Error("Token verification unavailable", "error", err.Error())
				abort(c, models.ErrAuthUnavailable)
				return
			}
			reject(c, log, auth.ReasonOf(err), "", models.ErrInvalidToken)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyUserRole, claims.Role.String())
		c.Set(ContextKeyRoleLevel, claims.RoleLevel)
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

// RoleLevelRequired middleware denies admitted requests whose role level is
// below level. It must run after AuthRequired.
func RoleLevelRequired(services interfaces.Services, level int) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("auth")

	return func(c *gin.Context) {
		claims, _ := GetClaims(c)
		decision := services.Policy().Check(claims, level)
		if !decision.Allowed {
			reject(c, log, decision.Reason, userIDOf(claims), models.ErrInsufficientRole)
			return
		}
		c.Next()
	}
}

// RoleRequired is RoleLevelRequired with the level taken from the rank table
func RoleRequired(services interfaces.Services, role auth.Role) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("auth")

	return func(c *gin.Context) {
		claims, _ := GetClaims(c)
		decision := services.Policy().CheckRole(claims, role)
		if !decision.Allowed {
			reject(c, log, decision.Reason, userIDOf(claims), models.ErrInsufficientRole)
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims AuthRequired attached to the request
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func reject(c *gin.Context, log *logger.Logger, reason auth.Reason, userID string, apiErr *models.APIError) {
	log.WithFields(map[string]interface{}{
		"reason": reason.String(),
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"ip":     c.ClientIP(),
	}).SecurityLogger("request_rejected", userID, reason.String())
	abort(c, apiErr)
}

func abort(c *gin.Context, apiErr *models.APIError) {
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr.Response())
}

func userIDOf(claims *auth.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// extractToken extracts the token from an "Authorization: Bearer <token>" header
func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}
