package api

import (
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/handlers"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/middlewares"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes with proper middleware
func SetupRoutes(router *gin.Engine, services interfaces.Services, cfg *config.Config) {
	// Global middleware. These also run for the 404 and 405 handlers, which
	// is what lets CORS answer preflights on any path.
	router.Use(middlewares.Recovery(services.GetLogger()))
	router.Use(middlewares.RequestLogging(services.GetLogger()))
	router.Use(middlewares.Security())
	router.Use(middlewares.CORS(cfg.API.CORS))

	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)
	router.NoRoute(handlers.NotFound)

	// Health check (no auth required)
	router.GET("/health", handlers.HealthCheck(services))
	router.GET("/health/ready", handlers.Readiness(services))

	setupAuthRoutes(router, services)
	setupLeadRoutes(router.Group("/api"), services)
}

// setupAuthRoutes configures login and token verification
func setupAuthRoutes(router *gin.Engine, services interfaces.Services) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login(services))
		authGroup.GET("/verify", middlewares.AuthRequired(services), handlers.Verify(services))
	}
}

// setupLeadRoutes configures lead management behind the request gate
func setupLeadRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	leads := rg.Group("/leads")
	leads.Use(middlewares.AuthRequired(services))
	leads.Use(middlewares.RoleRequired(services, auth.RoleAgent))
	{
		leads.GET("", handlers.ListLeads(services))
		leads.POST("", handlers.CreateLead(services))
		leads.GET("/:id", handlers.GetLead(services))
		leads.PATCH("/:id/status", handlers.UpdateLeadStatus(services))
		leads.DELETE("/:id", middlewares.RoleRequired(services, auth.RoleAdmin), handlers.DeleteLead(services))
	}
}
