// server/internal/api/routes/routes.go
package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-rescue-api-server/config"
	"food-rescue-api-server/internal/api/handlers"
	"food-rescue-api-server/internal/api/middleware"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/s3"
	"food-rescue-api-server/internal/socket"
	"food-rescue-api-server/internal/store"
)

// SetupRouter wires the handlers and role-gated route groups.
func SetupRouter(
	cfg config.Config,
	st store.Store,
	donations *lifecycle.DonationService,
	requests *lifecycle.RequestService,
	assignments *lifecycle.AssignmentService,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	log *zap.Logger,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	userHandler := &handlers.UserHandler{Store: st, JWT: cfg.JWT, Log: log}
	donationHandler := &handlers.DonationHandler{Service: donations, Uploader: s3Uploader, Log: log}
	requestHandler := &handlers.RequestHandler{Service: requests, Log: log}
	assignmentHandler := &handlers.AssignmentHandler{Service: assignments, Users: st, Log: log}
	notificationHandler := &handlers.NotificationHandler{Store: st, Log: log}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Log: log}

	api := router.Group("/api")
	{
		api.GET("/ws", webSocketHandler.ServeWs)

		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.GET("/me", middleware.Authenticate(), userHandler.Me)
		}

		users := api.Group("/users")
		users.Use(middleware.Authenticate())
		{
			users.PUT("/volunteer-profile",
				middleware.Authorize(models.RoleVolunteer), userHandler.UpdateVolunteerProfile)
			users.GET("/volunteers",
				middleware.Authorize(models.RoleNGO), userHandler.ListVolunteers)
		}

		donationRoutes := api.Group("/donations")
		donationRoutes.Use(middleware.Authenticate())
		{
			donorOnly := donationRoutes.Group("/")
			donorOnly.Use(middleware.Authorize(models.RoleDonor))
			{
				donorOnly.POST("/", donationHandler.Create)
				donorOnly.GET("/", donationHandler.List)
				donorOnly.PUT("/:id", donationHandler.Update)
				donorOnly.DELETE("/:id", donationHandler.Delete)
				donorOnly.POST("/:id/photo", donationHandler.UploadPhoto)
			}

			donationRoutes.GET("/available",
				middleware.Authorize(models.RoleNGO), donationHandler.Available)
			donationRoutes.GET("/:id", donationHandler.Get)

			claimRoutes := donationRoutes.Group("/")
			claimRoutes.Use(middleware.Authorize(models.RoleNGO, models.RoleVolunteer))
			{
				claimRoutes.PUT("/:id/accept", donationHandler.Accept)
				claimRoutes.PUT("/:id/pickup", donationHandler.Pickup)
				claimRoutes.PUT("/:id/deliver", donationHandler.Deliver)
			}
		}

		requestRoutes := api.Group("/requests")
		requestRoutes.Use(middleware.Authenticate())
		requestRoutes.Use(middleware.Authorize(models.RoleNGO))
		{
			requestRoutes.POST("/", requestHandler.Create)
			requestRoutes.GET("/", requestHandler.List)
			requestRoutes.GET("/:id", requestHandler.Get)
			requestRoutes.PUT("/:id/accept", requestHandler.Accept)
			requestRoutes.PUT("/:id/assign-volunteer", requestHandler.AssignVolunteer)
			requestRoutes.PUT("/:id/pickup", requestHandler.Pickup)
			requestRoutes.PUT("/:id/deliver", requestHandler.Deliver)
			requestRoutes.PUT("/:id/cancel", requestHandler.Cancel)
			requestRoutes.DELETE("/:id", requestHandler.Delete)
		}

		assignmentRoutes := api.Group("/assignments")
		assignmentRoutes.Use(middleware.Authenticate())
		{
			assignmentRoutes.POST("/create",
				middleware.Authorize(models.RoleNGO), assignmentHandler.Create)
			assignmentRoutes.GET("/",
				middleware.Authorize(models.RoleNGO), assignmentHandler.ListAll)

			volunteerOnly := assignmentRoutes.Group("/")
			volunteerOnly.Use(middleware.Authorize(models.RoleVolunteer))
			{
				volunteerOnly.POST("/claim", assignmentHandler.Claim)
				volunteerOnly.GET("/available", assignmentHandler.Available)
				volunteerOnly.PUT("/:id/accept", assignmentHandler.Accept)
				volunteerOnly.PUT("/:id/update-location", assignmentHandler.UpdateLocation)
				volunteerOnly.PUT("/:id/complete", assignmentHandler.Complete)
			}

			assignmentRoutes.GET("/volunteer/:volunteerId",
				middleware.Authorize(models.RoleVolunteer, models.RoleNGO), assignmentHandler.ListForVolunteer)
			assignmentRoutes.GET("/:id", assignmentHandler.Get)
			assignmentRoutes.PUT("/:id/cancel",
				middleware.Authorize(models.RoleVolunteer, models.RoleNGO), assignmentHandler.Cancel)
		}

		notificationRoutes := api.Group("/notifications")
		notificationRoutes.Use(middleware.Authenticate())
		{
			notificationRoutes.GET("/", notificationHandler.List)
			notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
			notificationRoutes.PUT("/:id/read", notificationHandler.MarkRead)
			notificationRoutes.PUT("/read-all", notificationHandler.MarkAllRead)
		}
	}

	return router
}
