package apihandlers

import (
	"time"

	"podsafe/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every API route registered.
func NewRouter(a *app.App) *gin.Engine {
	router := gin.Default() // Includes logger and recovery middleware

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if origins := a.Config.Server.AllowedOrigins; len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))

	h := NewAPIHandler(a)
	router.GET("/health", h.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/keywords", h.KeywordsHandler)

		v1.POST("/check", h.CheckHandler)
		v1.POST("/check/async", h.CheckAsyncHandler)

		checkGroup := v1.Group("/checks")
		{
			checkGroup.GET("", h.ListChecksHandler)
			checkGroup.GET("/:id", h.GetCheckHandler)
		}

		v1.GET("/jobs/:id", h.GetJobHandler)

		sessionGroup := v1.Group("/sessions")
		{
			sessionGroup.POST("", h.CreateSessionHandler)
			sessionGroup.GET("/:id", h.GetSessionHandler)
			sessionGroup.POST("/:id/submit", h.SubmitSessionHandler)
			sessionGroup.DELETE("/:id", h.DeleteSessionHandler)
		}
	}
	return router
}
