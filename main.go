package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailorlink/config"
	"tailorlink/cron"
	"tailorlink/database"
	appointmentRepoPkg "tailorlink/database/repository/appointment"
	offerRepoPkg "tailorlink/database/repository/offer"
	partyRepoPkg "tailorlink/database/repository/party"
	threadRepoPkg "tailorlink/database/repository/thread"
	"tailorlink/handlers"
	"tailorlink/middleware"
	"tailorlink/routes"
	"tailorlink/services/livesync"
	"tailorlink/services/negotiation"
	"tailorlink/services/notification"
	"tailorlink/services/payment"
	"tailorlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	offerRepo := offerRepoPkg.NewMongoOfferRepo()
	appointmentRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	threadRepo := threadRepoPkg.NewMongoThreadRepo()
	partyRepo := partyRepoPkg.NewMongoPartyRepo()

	if err := offerRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure offer indexes: %v", err)
	}
	if err := appointmentRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}
	if err := threadRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure thread indexes: %v", err)
	}

	// Side-effect outbox client and change-event feed.
	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer taskClient.Close()
	eventsClient := utils.GetCacheClient()

	// services.
	negotiationService := &negotiation.DefaultNegotiationService{
		Offers:       offerRepo,
		Appointments: appointmentRepo,
		Thread:       threadRepo,
		Parties:      partyRepo,
		Emitter: &negotiation.DefaultEmitter{
			Tasks:  taskClient,
			Events: eventsClient,
			Logger: logger,
		},
		Logger: logger,
	}

	notificationService := &notification.DefaultNotificationService{
		Parties: partyRepo,
	}

	paymentService := &payment.StripePaymentService{
		Appointments: appointmentRepo,
		Offers:       offerRepo,
		Logger:       logger,
	}

	// The hub feeds websocket subscribers from the change-event channel.
	hub := livesync.NewHub(negotiationService, eventsClient, logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// The outbox worker turns committed transitions into thread entries and
	// pushes.
	cron.InitSideEffectWorker(threadRepo, notificationService, eventsClient)

	negotiationHandler := handlers.NewNegotiationHandler(negotiationService, logger)
	threadHandler := handlers.NewThreadHandler(negotiationService, threadRepo, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, negotiationService, logger)
	liveViewHandler := handlers.NewLiveViewHandler(hub, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		PartyRepo: partyRepo,

		// Offer endpoints.
		CreateOfferHandler:  negotiationHandler.CreateOffer,
		ProposePriceHandler: negotiationHandler.ProposePrice,
		AcceptOfferHandler:  negotiationHandler.AcceptOffer,
		RefuseOfferHandler:  negotiationHandler.RefuseOffer,
		GetViewHandler:      negotiationHandler.GetView,
		LegalActionsHandler: negotiationHandler.LegalActions,
		LiveViewHandler:     liveViewHandler.Subscribe,
		ProposeAppointment:  negotiationHandler.ProposeAppointment,

		// Appointment endpoints.
		ConfirmAppointment: negotiationHandler.ConfirmAppointment,
		RefuseAppointment:  negotiationHandler.RefuseAppointment,
		CancelAppointment:  negotiationHandler.CancelAppointment,
		StartWork:          negotiationHandler.StartWork,
		MarkCompleted:      negotiationHandler.MarkCompleted,

		// Thread endpoints.
		ListMessagesHandler: threadHandler.ListMessages,
		PostMessageHandler:  threadHandler.PostMessage,

		// Payment endpoints.
		CreateIntentHandler:  paymentHandler.CreateIntent,
		StripeWebhookHandler: paymentHandler.Webhook,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.CacheClient, utils.AuthCacheClient},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	stopHub()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
