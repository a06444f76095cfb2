package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitreport/internal/api/middleware"
	"fitreport/internal/config"
	"fitreport/internal/metrics"
)

// NewRouter builds the gin engine with the shared middleware chain, /health and /metrics.
// Business routes are added by RegisterRoutes.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SessionMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)
	if corsHandler := newCORS(cfg); corsHandler != nil {
		router.Use(corsHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func newCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader, middleware.CorrelationIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.CorrelationIDHeader, ClearAuthHeader},
		AllowCredentials: false,
	}
	origins := cfg.API.AllowedOrigins()
	switch {
	case len(origins) > 0:
		corsConfig.AllowOrigins = origins
	case cfg.IsDevelopment():
		// 개발 환경에서는 모든 origin 허용
		corsConfig.AllowAllOrigins = true
	default:
		return nil
	}
	return cors.New(corsConfig)
}
