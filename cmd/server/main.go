package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"track-wise-service/internal/domain/repository"
	"track-wise-service/internal/infrastructure/config"
	"track-wise-service/internal/infrastructure/oauth"
	"track-wise-service/internal/infrastructure/persistence"
	"track-wise-service/internal/infrastructure/router"
	"track-wise-service/internal/interface/gmail"
	"track-wise-service/internal/interface/handlers"
	"track-wise-service/internal/interface/mq"
	repo "track-wise-service/internal/interface/repository"
	"track-wise-service/internal/usecase"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting TrackWise Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appMetrics := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Poll audit trail
	var pollRunRepo repository.PollRunRepository
	if cfg.PostgresDSN != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN, &repo.PollRuns{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		pollRunRepo = repo.NewGormPollRunRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, poll runs will not be recorded")
		pollRunRepo = repo.NewNopPollRunRepository()
	}

	// Set up repositories
	containerRepo := repo.NewMongoContainerRepository(db)
	schedulingRepo := repo.NewMongoSearchSchedulingRepository(db, cfg.SearchWindow.ID)
	carrierRepo := repo.NewMscRepository(cfg.CarrierBaseURL, cfg.CarrierTimeout, log)

	// Notification channels
	notifier := router.NewNotificationRouter(appMetrics, log)

	if cfg.TelegramBotToken != "" && len(cfg.TelegramChatIDs) > 0 {
		notifier.Register(repo.NewTelegramRepository(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatIDs, log))
	}

	if cfg.GmailRefreshToken != "" && len(cfg.GmailRecipients) > 0 {
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			log,
		)
		gmailNotifier, err := gmail.NewGmailNotifier(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, cfg.GmailRecipients, log)
		if err != nil {
			log.Fatal("Failed to create Gmail notifier", "error", err)
		}
		notifier.Register(gmailNotifier)
	}

	var publisher *mq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		notifier.Register(publisher)
	}

	log.Info("Notification channels ready", "channels", notifier.Channels())

	// Set up use cases
	schedulingService := usecase.NewSearchSchedulingService(schedulingRepo, cfg.SearchWindow, appMetrics, log)
	reconciler := usecase.NewContainerReconciler(containerRepo, log)
	containerService := usecase.NewContainerService(containerRepo, carrierRepo, pollRunRepo, schedulingService, log)
	dispatcher := usecase.NewPollDispatcher(
		schedulingService,
		reconciler,
		containerRepo,
		carrierRepo,
		pollRunRepo,
		notifier,
		appMetrics,
		log,
		cfg.PollTimeout,
	)

	if scheduling, err := schedulingService.GetSearchScheduling(ctx); err != nil {
		log.Warn("Failed to load search scheduling", "error", err)
	} else {
		appMetrics.ScheduledContainers.Set(float64(len(scheduling.Containers)))
	}

	// Start the hourly poll dispatcher in a goroutine
	go dispatcher.Start(ctx)

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	engine := handlers.NewRouter(
		handlers.NewContainerHandler(containerService, log),
		handlers.NewSchedulingHandler(schedulingService),
		promhttp.Handler(),
		log,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the dispatcher

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("RabbitMQ close error", "error", err)
		}
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("TrackWise Service stopped")
}
