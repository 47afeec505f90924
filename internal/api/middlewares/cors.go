package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS middleware handles Cross-Origin Resource Sharing. Preflight requests
// are answered here with 200 and an empty body whatever headers they carry;
// every other request goes through gin-contrib/cors with the configured
// allow-list.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	var origins []string
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		allowAll = true
	}

	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if allowAll {
		// Reflect any origin so credentialed requests keep working
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsConfig.AllowOrigins = origins
	}
	normal := cors.New(corsConfig)

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodOptions {
			normal(c)
			return
		}

		origin := c.Request.Header.Get("Origin")
		switch {
		case origin != "" && (allowAll || allowed[origin]):
			c.Header("Access-Control-Allow-Origin", origin)
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		default:
			c.Header("Access-Control-Allow-Origin", origins[0])
		}
		c.Header("Vary", "Origin")
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", maxAge)

		c.AbortWithStatus(http.StatusOK)
	}
}
