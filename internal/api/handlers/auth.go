package handlers

import (
	"errors"
	"net/http"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/middlewares"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"

	"github.com/gin-gonic/gin"
)

// Login checks the submitted credentials and issues a token
func Login(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("auth")

	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Identifier() == "" || req.Password == "" {
			respondError(c, models.ErrMissingCredentials)
			return
		}
		identifier := req.Identifier()

		user, err := services.Credentials().FindByCredentials(c.Request.Context(), identifier, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserNotFound) {
				log.WithField("ip", c.ClientIP()).SecurityLogger("login_failed", "", "identifier="+identifier)
				respondError(c, models.ErrInvalidCredentials)
				return
			}
			log.Error("Credential lookup failed", "identifier", identifier, "error", err.Error())
			respondError(c, models.ErrServiceUnavailable)
			return
		}

		level, ok := services.Policy().LevelFor(user.Role, user.RoleLevel)
		if !ok {
			log.SecurityLogger("login_unranked_role", user.ID, "role="+user.Role.String())
			respondError(c, models.ErrInvalidCredentials)
			return
		}

		token, claims, err := services.TokenService().Issue(user.Identity(level))
		if err != nil {
			log.Error("Token issuance failed", "user_id", user.ID, "error", err.Error())
			respondError(c, models.ErrAuthUnavailable)
			return
		}

		log.AuditLogger("login", user.ID, "auth", "role="+user.Role.String())

		c.JSON(http.StatusOK, models.LoginResponse{
			Success:   true,
			Token:     token,
			ExpiresIn: claims.ExpiresAt - claims.IssuedAt,
			User:      models.NewUserResponse(claims.Identity),
		})
	}
}

// Verify returns the user carried by the already verified token. The
// credential store is not consulted again.
func Verify(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middlewares.GetClaims(c)
		if !ok {
			respondError(c, models.ErrInvalidToken)
			return
		}

		c.JSON(http.StatusOK, models.VerifyResponse{
			Success: true,
			User:    models.NewUserResponse(claims.Identity),
		})
	}
}

func respondError(c *gin.Context, apiErr *models.APIError) {
	c.JSON(apiErr.StatusCode, apiErr.Response())
}
