package routes

import (
	"net/http"
	"time"

	"tailorlink/handlers"
	"tailorlink/middleware"
	"tailorlink/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterOfferRoutes registers the offer sub-machine and its read side.
func RegisterOfferRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/offers")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.PartyRepo))
		api.POST("", hb.CreateOfferHandler)
		api.GET("/:id", hb.GetViewHandler)
		api.GET("/:id/actions", hb.LegalActionsHandler)
		api.GET("/:id/live", hb.LiveViewHandler)
		api.POST("/:id/price", hb.ProposePriceHandler)
		api.POST("/:id/accept", hb.AcceptOfferHandler)
		api.POST("/:id/refuse", hb.RefuseOfferHandler)
		api.POST("/:id/appointment", hb.ProposeAppointment)
	}
}

// RegisterAppointmentRoutes registers the appointment sub-machine.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.PartyRepo))
		api.POST("/:id/confirm", hb.ConfirmAppointment)
		api.POST("/:id/refuse", hb.RefuseAppointment)
		api.POST("/:id/cancel", hb.CancelAppointment)
		api.POST("/:id/start", hb.StartWork)
		api.POST("/:id/complete", hb.MarkCompleted)
	}
}

// RegisterThreadRoutes registers the shared conversation endpoints.
func RegisterThreadRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/threads")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.PartyRepo))
		api.GET("/:offerId/messages", hb.ListMessagesHandler)
		api.POST("/:offerId/messages", hb.PostMessageHandler)
	}
}

// RegisterPaymentRoutes registers the Stripe bridge. The webhook endpoint is
// unauthenticated; it is verified by signature instead.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.StripeWebhookHandler)
		api.POST("/intent", middleware.JWTAuthMiddleware(hb.PartyRepo), hb.CreateIntentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterOfferRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterThreadRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}
