package middlewares

import (
	"fmt"
	"net/http"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery middleware turns panics into a generic 500 response
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("recovery")

	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithFields(map[string]interface{}{
			"request_id": c.GetString(ContextKeyRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
		}).Error("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrInternal.Response())
	})
}
