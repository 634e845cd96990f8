package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resourceHandler "blogmap-backend/internal/domains/resource/handler"
	"blogmap-backend/internal/shared/middleware"
	"blogmap-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.SecureHeaders(),
	)

	router.GET("/health", healthCheckHandler(c))

	v0 := router.Group("/api/v0")
	{
		mountResource(v0.Group("/author"), c.AuthorHandler)
		mountResource(v0.Group("/paper"), c.PaperHandler)
	}

	return router
}

// mountResource wires the uniform CRUD surface for one resource.
func mountResource(g *gin.RouterGroup, h *resourceHandler.ResourceHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
