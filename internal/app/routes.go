// Package app provides the HTTP handlers for the triage service.
package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Chandru2600/Vaidra/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes(log *slog.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())         // Panic recovery
	router.Use(middleware.Logger(log)) // Custom slog logger
	router.Use(middleware.CORS())      // CORS support

	// Health check routes (public)
	router.GET("/health", a.HandleHealth)
	health := router.Group("/health")
	{
		health.GET("/readiness", a.HandleReadiness)
		health.GET("/liveness", a.HandleLiveness)
	}

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", a.HandleRegister)
		auth.POST("/login", a.HandleLogin)

		profile := auth.Group("/profile")
		profile.Use(middleware.Authenticate(a.tokens))
		{
			profile.GET("", a.HandleGetProfile)
			profile.PUT("", a.HandleUpdateProfile)
		}
	}

	// Scan routes (public, an anonymous upload is allowed)
	scans := router.Group("/scans")
	{
		scans.POST("/analyze", a.HandleSubmitScan)
		scans.GET("/recent", a.HandleRecentScans)
	}

	// Doctor review routes
	doctor := router.Group("/doctor")
	{
		doctor.GET("/cases", a.HandleListCases)
		doctor.POST("/assign", a.HandleAssignCase)
		doctor.POST("/note", a.HandleAddNote)
	}

	return router
}
