package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/ERP-sub001/internal/config"
	"github.com/shehrozeikram/ERP-sub001/internal/handlers"
	"github.com/shehrozeikram/ERP-sub001/internal/middleware"
	"github.com/shehrozeikram/ERP-sub001/internal/push"
)

func Register(router *gin.Engine, service *push.Service, cfg config.Config) {
	router.Use(corsMiddleware(cfg.AllowedOriginsRaw))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "attendance-ingestion"})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pushHandler := handlers.NewPushHandler(service)

	protected := router.Group("/api")
	protected.Use(middleware.AuthRequired(cfg.JwtSecret))
	{
		protected.POST("/device-push/start", middleware.RequireAnyRole("admin", "manager"), pushHandler.Start)
		protected.POST("/device-push/stop", middleware.RequireAnyRole("admin", "manager"), pushHandler.Stop)
		protected.GET("/device-push/status", middleware.RequireAnyRole("admin", "manager"), pushHandler.Status)
	}
}

func corsMiddleware(allowed string) gin.HandlerFunc {
	origins := []string{}
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range origins {
				if origin == allowedOrigin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Vary", "Origin")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
