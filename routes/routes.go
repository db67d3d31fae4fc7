// File: /routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"
	"mycalendar-api/config"
	"mycalendar-api/controllers"
	"mycalendar-api/middleware"
	"mycalendar-api/services"
)

// SetupRoutes wires services and controllers onto r. /metrics is only mounted
// when a gatherer is supplied. The caller owns limiter's cleanup loop.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, dispatcher *services.NotificationDispatcher, limiter *middleware.RateLimiter, gatherer prometheus.Gatherer) {
	loc := cfg.Location()

	// Services
	userService := services.NewUserService(db)
	friendService := services.NewFriendService(db, dispatcher, cfg.AppURL)
	groupService := services.NewGroupService(db)
	eventService := services.NewEventService(db, dispatcher, loc)
	invitationService := services.NewInvitationService(db)
	calendarService := services.NewCalendarService(db, loc)

	// Controllers
	authController := controllers.NewAuthController(userService, cfg.JWTSecret)
	userController := controllers.NewUserController(userService)
	friendController := controllers.NewFriendController(friendService)
	groupController := controllers.NewGroupController(groupService)
	eventController := controllers.NewEventController(eventService)
	invitationController := controllers.NewInvitationController(invitationService)
	calendarController := controllers.NewCalendarController(calendarService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API version 1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter))
	v1.Use(middleware.ValidateJSON())

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", userController.GetProfile)
			users.DELETE("/me", userController.DeleteAccount)
			users.GET("/search", userController.SearchUsers)
		}

		friends := protected.Group("/friends")
		{
			friends.GET("", friendController.GetFriends)
			friends.POST("/invite", friendController.InviteByEmail)
			friends.DELETE("/:id", friendController.RemoveFriend)
			friends.GET("/:id/status", friendController.GetFriendshipStatus)
		}

		requests := protected.Group("/friend-requests")
		{
			requests.GET("", friendController.GetFriendRequests)
			requests.GET("/sent", friendController.GetSentFriendRequests)
			requests.POST("", friendController.SendFriendRequest)
			requests.POST("/:id/accept", friendController.AcceptFriendRequest)
			requests.POST("/:id/decline", friendController.DeclineFriendRequest)
		}

		groups := protected.Group("/groups")
		{
			groups.GET("", groupController.GetGroups)
			groups.POST("", groupController.CreateGroup)
			groups.GET("/:id", groupController.GetGroup)
			groups.PUT("/:id", groupController.UpdateGroup)
			groups.DELETE("/:id", groupController.DeleteGroup)
		}

		events := protected.Group("/events")
		{
			events.GET("", eventController.GetEvents)
			events.POST("", eventController.CreateEvent)
			events.GET("/:id", eventController.GetEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.DELETE("/:id", eventController.DeleteEvent)
		}

		invitations := protected.Group("/invitations")
		{
			invitations.GET("", invitationController.GetInvitations)
			invitations.POST("/:id/respond", invitationController.RespondToInvitation)
		}

		calendar := protected.Group("/calendar")
		{
			calendar.GET("/week", calendarController.GetWeek)
			calendar.GET("/friends/:id", calendarController.GetFriendWeek)
			calendar.GET("/export.ics", calendarController.ExportICS)
		}
	}
}

// SetupCORS adapts an rs/cors policy to gin. Preflight requests are answered
// here and never reach the router. Credentials are only allowed for an
// explicit origin list; a "*" entry turns them off.
func SetupCORS(allowedOrigins []string) gin.HandlerFunc {
	allowCredentials := len(allowedOrigins) > 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	policy := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: allowCredentials,
	})

	return func(c *gin.Context) {
		policy.HandlerFunc(c.Writer, c.Request)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
