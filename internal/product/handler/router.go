package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// NewRouter builds the public HTTP API, wrapped in CORS for browser storefronts.
func NewRouter(h *HTTPHandler, log logger.ZapLogger, allowedOrigins []string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.GinContext(), middleware.GinLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}).Handler(r)
}
