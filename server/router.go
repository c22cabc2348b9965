package server

import (
	"net/http"
	"time"

	"youtube-auto-post/infrastructure/realtime"
	httpHandler "youtube-auto-post/interfaces/http"
	"youtube-auto-post/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	healthHandler httpHandler.IHealthHandler,
	settingsHandler httpHandler.ISettingsHandler,
	uploadHandler httpHandler.IUploadHandler,
	youtubeAuthHandler httpHandler.IYouTubeAuthHandler,
	hub *realtime.UploadHub,
	secretKey string,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 32 << 20

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) > 0 {
		corsConfig.AllowOrigins = allowOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", healthHandler.Healthz)
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))

	if youtubeAuthHandler != nil {
		router.GET("/auth/youtube", youtubeAuthHandler.GetAuthURL)
		router.GET("/auth/youtube/callback", youtubeAuthHandler.HandleCallback)
		api.GET("/youtube/oauth/status", youtubeAuthHandler.Status)
	}

	settings := api.Group("/settings")
	{
		settings.POST("", settingsHandler.CreateSettings)
		settings.GET("", settingsHandler.GetSettings)
		settings.PATCH("", settingsHandler.RenameSettings)
		settings.PUT("/client-secrets", settingsHandler.UploadClientSecrets)
	}

	uploads := api.Group("/uploads")
	{
		uploads.POST("", uploadHandler.CreateUpload)
		uploads.GET("", uploadHandler.ListUploads)
		uploads.POST("/sweep", uploadHandler.Sweep)
		if hub != nil {
			uploads.GET("/stream", hub.Serve)
		}
		uploads.GET("/:id", uploadHandler.GetUpload)
		uploads.PATCH("/:id", uploadHandler.UpdateUpload)
		uploads.PUT("/:id/video", uploadHandler.AttachVideo)
		uploads.POST("/:id/schedule", uploadHandler.Schedule)
		uploads.POST("/:id/upload", uploadHandler.UploadNow)
		uploads.GET("/:id/messages", uploadHandler.ListMessages)
	}

	return router
}
