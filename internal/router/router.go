package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/herald-dev/herald/internal/config"
	"github.com/herald-dev/herald/internal/handlers"
	"github.com/herald-dev/herald/internal/metrics"
	"github.com/herald-dev/herald/internal/middleware"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	handlers.Configure(cfg)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ServerConfig.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users", middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			users.POST("/:id/admin", handlers.GrantAdmin)
			users.DELETE("/:id", handlers.DeleteUser)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.POST("", middleware.RequireAdmin(), handlers.CreateNotification)
			notifications.GET("", handlers.ListNotifications)
			notifications.PATCH("/read", handlers.MarkRead)
			notifications.PATCH("/read-all", handlers.MarkAllRead)
			notifications.DELETE("/:id", handlers.DeleteNotification)
		}
	}

	return r
}
