package api

import (
	"github.com/gin-gonic/gin"

	"projlens/internal/api/handler"
	"projlens/internal/api/middleware"
	"projlens/internal/config"
	"projlens/internal/repository"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(runRepo *repository.RunRepository, cfg *config.Config) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	runHandler := handler.NewRunHandler(runRepo)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)
	}

	return r
}
