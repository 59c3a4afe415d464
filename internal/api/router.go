package api

import (
	"net/http"
	"time"

	"github.com/expotoworld/programs-service/internal/auth"
	"github.com/expotoworld/programs-service/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the settings the router needs beyond the handler.
type RouterConfig struct {
	Verifier       *auth.Verifier
	AllowedOrigins []string
	// UploadDir is served under /uploads when set, for locally stored banners.
	UploadDir string
}

// SetupRouter builds the gin engine with middleware and every route.
func SetupRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg.Verifier))
	{
		v1.GET("/programs", handler.ListPrograms)
		v1.POST("/programs", handler.CreateProgram)
		v1.GET("/programs/:id", handler.GetProgram)
		v1.PATCH("/programs/:id", handler.UpdateProgram)
		v1.POST("/programs/:id/organizations", handler.AddProgramOrganization)
		v1.POST("/programs/:id/course_codes", handler.AddProgramCourseCode)
		v1.POST("/programs/:id/banner_image", handler.UploadBanner)

		v1.GET("/organizations", handler.ListOrganizations)
		v1.POST("/organizations", handler.CreateOrganization)

		v1.GET("/course_codes", handler.ListCourseCodes)
		v1.POST("/course_codes", handler.CreateCourseCode)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "programs-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware allows any origin unless a list is configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
