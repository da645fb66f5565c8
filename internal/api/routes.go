package api

import (
	"alcyxob/fitness-catalog/internal/gifurl"
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything SetupRoutes mounts. Admin is optional.
type RouterDeps struct {
	Logger          *logger.Logger
	JWTSecret       string
	ExerciseService service.ExerciseService
	ProxyBaseURL    string
	Gifs            *GifHandler
	Admin           *AdminHandler
}

func SetupRoutes(router *gin.Engine, deps RouterDeps) {
	router.Use(RequestLogger(deps.Logger), CORS())

	exerciseHandler := NewExerciseHandler(deps.ExerciseService, deps.ProxyBaseURL)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Stored gifUrl values point here, see gifurl.ProxyURL.
	router.GET(gifurl.ProxyRoute+":catalogId", deps.Gifs.ServeExerciseGif)

	apiV1 := router.Group("/api/v1")
	{
		exerciseGroup := apiV1.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
		}
	}

	// Without a secret every token would verify against an empty key.
	if deps.JWTSecret == "" || deps.Admin == nil {
		deps.Logger.Warn("Admin routes disabled", "jwtSecretSet", deps.JWTSecret != "")
		return
	}
	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(AuthMiddleware(deps.JWTSecret), RoleMiddleware(RoleAdmin))
	{
		adminGroup.POST("/import", deps.Admin.RunImport)
		adminGroup.POST("/reconcile", deps.Admin.RunReconcile)
	}
}
