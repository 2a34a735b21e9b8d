package router

import (
	"github.com/gin-gonic/gin"

	"docex/internal/handler"
	"docex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(apiKey string, extractH *handler.ExtractHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health check
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKey(apiKey))
	v1.POST("/extract", extractH.Extract)

	return r
}
