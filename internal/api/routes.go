package api

import (
	"time"

	"lagospaces/server/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with CORS, request logging and every route
func NewRouter(handler *Handler, origins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), cors.New(corsConfig(origins)))
	if handler.maxUploadSize > 0 {
		router.MaxMultipartMemory = handler.maxUploadSize
	}

	SetupRoutes(router, handler)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	tokens := handler.auth.Tokens()
	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/signup", handler.Signup)
		api.POST("/auth/logout", requireAuth, handler.Logout)
		api.GET("/auth/me", requireAuth, handler.Me)

		api.GET("/catalog", handler.GetCatalog)
	}

	public := api.Group("", optionalAuth)
	{
		public.GET("/properties", handler.GetProperties)
		public.GET("/properties/:id", handler.GetProperty)
		public.GET("/feed", handler.GetFeed)
		public.GET("/search", handler.Search)
		public.GET("/search/map", handler.SearchMap)
		public.GET("/users/:id", handler.GetProfile)
	}

	private := api.Group("", requireAuth)
	{
		private.POST("/feed/:id/like", handler.ToggleLike)
		private.POST("/feed/:id/save", handler.ToggleSave)

		private.GET("/saved", handler.GetSaved)
		private.POST("/saved/:id", handler.SaveProperty)
		private.DELETE("/saved/:id", handler.RemoveSaved)

		private.GET("/chats", handler.GetChats)
		private.GET("/chats/:id/messages", handler.GetMessages)
		private.POST("/chats/:id/messages", handler.SendMessage)

		private.GET("/notifications", handler.GetNotifications)
		private.POST("/notifications/read-all", handler.MarkAllNotificationsRead)
		private.POST("/notifications/:id/read", handler.MarkNotificationRead)

		private.GET("/settings", handler.GetSettings)
		private.PUT("/settings", handler.UpdateSettings)

		private.GET("/bookings", handler.GetBookings)
		private.POST("/bookings", handler.OpenBooking)
		private.POST("/bookings/:id/confirm-visit", handler.ConfirmVisit)
		private.GET("/bookings/sessions/:id", handler.GetBookingSession)
		private.POST("/bookings/sessions/:id/payment", handler.SubmitPayment)
		private.POST("/bookings/sessions/:id/agreement", handler.ConfirmAgreement)
		private.DELETE("/bookings/sessions/:id", handler.CloseBooking)

		private.POST("/verification", handler.OpenVerification)
		private.GET("/verification/:id", handler.GetVerification)
		private.DELETE("/verification/:id", handler.CloseVerification)
		private.POST("/verification/:id/files/:kind", handler.AttachDocument)
		private.GET("/verification/:id/files/:kind", handler.GetDocument)
		private.PUT("/verification/:id/nin", handler.SetNIN)
		private.POST("/verification/:id/next", handler.NextVerificationStep)
		private.POST("/verification/:id/back", handler.PreviousVerificationStep)
		private.POST("/verification/:id/submit", handler.SubmitVerification)

		private.POST("/listings", handler.OpenListing)
		private.GET("/listings/:id", handler.GetListing)
		private.DELETE("/listings/:id", handler.CloseListing)
		private.PUT("/listings/:id/steps/:step", handler.SaveListingStep)
		private.POST("/listings/:id/images", handler.AddListingImage)
		private.GET("/listings/:id/images/:index", handler.GetListingImage)
		private.DELETE("/listings/:id/images/:index", handler.RemoveListingImage)
		private.POST("/listings/:id/ownership", handler.SetListingOwnership)
		private.POST("/listings/:id/next", handler.NextListingStep)
		private.POST("/listings/:id/back", handler.PreviousListingStep)
		private.POST("/listings/:id/submit", handler.SubmitListing)
	}
}
