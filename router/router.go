package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/config"
	"github.com/yeremiapane/wastezero-realtime/controllers"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/middlewares"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/services"
)

func SetupRouter(store database.Store, hub *realtime.Hub, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).RateLimit())

	chat := services.NewChatService(store, hub)
	notifications := services.NewNotificationService(store, hub)

	userCtrl := controllers.NewUserController(store, hub, cfg.JWTTTL)
	messageCtrl := controllers.NewMessageController(chat)
	notificationCtrl := controllers.NewNotificationController(notifications)
	socketCtrl := controllers.NewSocketController(hub, chat, cfg.WSSendBuffer, cfg.CORSOrigins)

	authRequired := middlewares.AuthMiddleware(store)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", middlewares.NewStrictRateLimiter(cfg.AuthRatePerMinute), userCtrl.Register)
		authGroup.POST("/login", middlewares.NewStrictRateLimiter(cfg.AuthRatePerMinute), userCtrl.Login)
		authGroup.POST("/logout", authRequired, userCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	users := r.Group("/api/users", authRequired)
	{
		users.GET("", userCtrl.GetAllUsers)
		users.GET("/profile", userCtrl.GetProfile)
		users.GET("/online", userCtrl.GetOnlineUsers)
	}

	messages := r.Group("/api/messages", authRequired)
	{
		messages.GET("/:otherUserId", messageCtrl.GetMessages)
		messages.POST("/send/:receiverId", messageCtrl.SendMessage)
	}

	notifs := r.Group("/api/notifications", authRequired)
	{
		notifs.GET("", notificationCtrl.GetNotifications)
		notifs.GET("/unread-count", notificationCtrl.GetUnreadCount)
		notifs.PATCH("/mark-all-read", notificationCtrl.MarkAllAsRead)
		notifs.PATCH("/:id/read", notificationCtrl.MarkAsRead)
		notifs.DELETE("/:id", notificationCtrl.DeleteNotification)
		notifs.POST("", middlewares.RequireRoles(models.RoleNGO, models.RoleAdmin), notificationCtrl.CreateNotification)
	}

	admin := r.Group("/api/admin", authRequired, middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.PATCH("/users/:id/block", userCtrl.BlockUser)
		admin.PATCH("/users/:id/unblock", userCtrl.UnblockUser)
	}

	// WebSocket endpoint
	r.GET("/ws", middlewares.RequireWebSocketUpgrade(), authRequired, socketCtrl.Connect)

	return r
}
