package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/internal/handlers"
	"github.com/secretary-dev/secretary/internal/middleware"
	"github.com/secretary-dev/secretary/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		alerts := api.Group("/alerts", middleware.AuthMiddleware())
		{
			alerts.GET("", handlers.GetAlerts)
			alerts.GET("/unread", handlers.GetUnreadAlerts)
			alerts.GET("/stats/summary", handlers.GetAlertStats)
			alerts.PUT("/mark-all-read", handlers.MarkAllAlertsRead)
			alerts.GET("/:alert_id", handlers.GetAlert)
			alerts.PUT("/:alert_id/read", handlers.MarkAlertRead)
			alerts.PUT("/:alert_id/dismiss", handlers.DismissAlert)
		}

		settings := api.Group("/settings", middleware.AuthMiddleware())
		{
			settings.GET("", handlers.GetSettings)
			settings.PUT("", handlers.UpdateSettings)
		}

		emails := api.Group("/emails", middleware.AuthMiddleware())
		{
			emails.GET("", handlers.GetEmails)
			emails.POST("/send", handlers.SendEmail)
			emails.POST("/sync", handlers.SyncEmails)
			emails.GET("/:email_id", handlers.GetEmail)
			emails.PUT("/:email_id/read", handlers.MarkEmailRead)
			emails.POST("/:email_id/reply-draft", handlers.DraftEmailReply)
		}

		calendar := api.Group("/calendar", middleware.AuthMiddleware())
		{
			calendar.GET("/upcoming", handlers.GetUpcomingEvents)
		}
	}

	return r
}
