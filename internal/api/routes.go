package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"fitreport/internal/api/middleware"
	"fitreport/internal/auth"
	"fitreport/internal/config"
	"fitreport/internal/datastore"
)

// Dependencies are the collaborators the /api routes need.
type Dependencies struct {
	Config *config.Config
	Store  *datastore.Client
	Blobs  BlobStore
	// Scanner and RateCounter are optional.
	Scanner     VirusScanner
	RateCounter RateCounter
}

// RateCounter is satisfied by *redis.Client.
type RateCounter = redisRateCounter

// RegisterRoutes mounts every /api endpoint on router.
func RegisterRoutes(router *gin.Engine, deps Dependencies) error {
	if err := registerValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	cfg := deps.Config
	keys := middleware.APIKeys{Anon: cfg.API.AnonKey, ServiceRole: cfg.API.ServiceRoleKey}
	serviceOnly := middleware.RequireServiceRole(keys)

	var rateCounter redisRateCounter
	if deps.RateCounter != nil && cfg.API.LoginRateLimitPerHour > 0 {
		rateCounter = deps.RateCounter
	}

	authHandler := NewAuthHandler(auth.NewAuthService(deps.Store), rateCounter, cfg.API.LoginRateLimitPerHour, !cfg.IsDevelopment())
	userHandler := NewUserHandler(deps.Store)
	positionHandler := NewPositionHandler(deps.Store)
	documentHandler := NewDocumentHandler(deps.Store)
	uploadHandler := NewUploadHandler(deps.Blobs, deps.Scanner)

	api := router.Group("/api")
	api.Use(middleware.APIKeyMiddleware(keys))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.GET("/check-duplicate", userHandler.CheckDuplicate)
			users.GET("/stats", userHandler.Stats)
			users.PATCH("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}

		api.GET("/positions", positionHandler.List)

		documents := api.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.POST("", documentHandler.Create)
			documents.GET("/notification-count", documentHandler.NotificationCount)
			documents.POST("/upload", serviceOnly, uploadHandler.Upload)
			documents.PUT("/:id", serviceOnly, documentHandler.Update)
			documents.DELETE("/:id", serviceOnly, documentHandler.Delete)
		}
	}
	return nil
}
