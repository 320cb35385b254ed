package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/bidmarket-backend/internal/config"
	"github.com/avoronin/bidmarket-backend/internal/http/handlers"
	"github.com/avoronin/bidmarket-backend/internal/http/middleware"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	projectHandler *handlers.ProjectHandler,
	bidHandler *handlers.BidHandler,
	contractHandler *handlers.ContractHandler,
	conversationHandler *handlers.ConversationHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/documents", http.Dir(cfg.DocumentStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile/me", profileHandler.Me)
		protected.PUT("/profile/me", profileHandler.UpdateMe)

		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/my", projectHandler.ListMine)
		protected.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)

		protected.POST("/projects/:id/bids", middleware.UUIDValidator("id"), bidHandler.Submit)
		protected.GET("/projects/:id/bids", middleware.UUIDValidator("id"), bidHandler.ListByProject)
		protected.PUT("/projects/:id/bids/withdraw", middleware.UUIDValidator("id"), bidHandler.Withdraw)
		protected.PUT("/projects/:id/bids/:bidId/accept", middleware.UUIDValidator("id", "bidId"), bidHandler.Accept)
		protected.PUT("/projects/:id/bids/:bidId/reject", middleware.UUIDValidator("id", "bidId"), bidHandler.Reject)
		protected.PUT("/projects/:id/bids/:bidId/counter", middleware.UUIDValidator("id", "bidId"), bidHandler.Counter)
		protected.PUT("/projects/:id/bids/:bidId/counter/accept", middleware.UUIDValidator("id", "bidId"), bidHandler.CounterAccept)
		protected.PUT("/projects/:id/bids/:bidId/counter/reject", middleware.UUIDValidator("id", "bidId"), bidHandler.CounterReject)

		protected.GET("/bids/my", bidHandler.ListMine)
		protected.GET("/bids/:id", middleware.UUIDValidator("id"), bidHandler.Get)

		protected.POST("/projects/:id/contract", middleware.UUIDValidator("id"), contractHandler.Create)
		protected.GET("/projects/:id/contract", middleware.UUIDValidator("id"), contractHandler.GetByProject)
		protected.PUT("/projects/:id/contract/sign", middleware.UUIDValidator("id"), contractHandler.Sign)
		protected.PUT("/projects/:id/contract/terminate", middleware.UUIDValidator("id"), contractHandler.Terminate)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), contractHandler.Get)
		protected.POST("/contracts/:id/complete", middleware.UUIDValidator("id"), contractHandler.Complete)
		protected.POST("/contracts/:id/documents", middleware.UUIDValidator("id"), contractHandler.UploadDocument)
		protected.GET("/contracts/:id/documents", middleware.UUIDValidator("id"), contractHandler.ListDocuments)

		protected.GET("/conversations", conversationHandler.List)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.Messages)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.Send)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread", notificationHandler.UnreadCount)
		protected.PUT("/notifications/read", notificationHandler.MarkAllRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
	}

	return r
}
