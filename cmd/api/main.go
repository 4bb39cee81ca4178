package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SiteMonitorAPI/internal/channel"
	"SiteMonitorAPI/internal/config"
	"SiteMonitorAPI/internal/database"
	"SiteMonitorAPI/internal/handler"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/metrics"
	"SiteMonitorAPI/internal/mqtt"
	"SiteMonitorAPI/internal/repository"
	"SiteMonitorAPI/internal/server"
	"SiteMonitorAPI/internal/service"
	"SiteMonitorAPI/internal/source"
	"SiteMonitorAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger since main logger isn't ready
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Site Monitor API Server")

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	ctx := context.Background()
	if err := db.Health(ctx); err != nil {
		log.Fatal("Database health check failed: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to apply database schema: %v", err)
	}

	// 4. Initialize Repositories
	siteRepo := repository.NewSiteRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	postMortemRepo := repository.NewPostMortemRepository(db.DB)

	// 5. Site status source
	siteSource := source.NewClient(cfg.Monitoring.SourceURL, cfg.Monitoring.SourceTimeout, log)

	// 6. Notification channels
	registry := channel.NewRegistry()
	if cfg.Notifications.WhatsAppGatewayURL != "" {
		registry.Register(channel.NewWhatsAppChannel(
			cfg.Notifications.WhatsAppGatewayURL,
			cfg.Notifications.WhatsAppToken,
			cfg.Notifications.SendTimeout,
			log,
		))
	}
	if cfg.Notifications.ResendAPIKey != "" {
		registry.Register(channel.NewEmailChannel(
			cfg.Notifications.ResendAPIKey,
			cfg.Notifications.EmailFrom,
			log,
		))
	}
	if len(cfg.Notifications.WebhookURLs) > 0 {
		registry.Register(channel.NewWebhookChannel(cfg.Notifications.SendTimeout, log))
	}
	log.Info("Notification channels registered: %v", registry.Names())

	// 7. Websocket hub
	hubCtx, hubCancel := context.WithCancel(ctx)
	defer hubCancel()

	hub := websocket.NewHub(log)
	go hub.Run(hubCtx)

	// 8. MQTT publisher (optional)
	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPublisher(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to create MQTT publisher: %v", err)
		}
		if err := publisher.Connect(); err != nil {
			log.Fatal("Failed to connect to MQTT broker: %v", err)
		}
		defer publisher.Disconnect()
	}

	// 9. Metrics collector (optional)
	var collector *metrics.Collector
	if cfg.Redis.Enabled {
		collector = metrics.NewCollector(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		collector.Start()
		defer collector.Stop()
	}

	// 10. Initialize Services
	detectionService := service.NewDetectionService(
		siteSource, siteRepo, eventRepo,
		hub, publisher, collector, log,
		cfg.Monitoring.OutageThresholdPct,
	)
	notificationService := service.NewNotificationService(
		notificationRepo, siteRepo, registry,
		cfg.Notifications, collector, log,
	)
	eventService := service.NewEventService(eventRepo, hub, publisher, log)
	postMortemService := service.NewPostMortemService(postMortemRepo, eventRepo, log)
	pollingService := service.NewPollingService(
		detectionService, notificationService,
		cfg.Monitoring.PollIntervalSeconds, log,
	)

	if cfg.Monitoring.PollAutoStart {
		pollingService.Start()
		log.Info("Polling loop auto-started (interval: %ds)", cfg.Monitoring.PollIntervalSeconds)
	}

	// 11. Initialize Handlers
	siteHandler := handler.NewSiteHandler(siteRepo, detectionService, pollingService, log)
	eventHandler := handler.NewEventHandler(eventService, notificationService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	postMortemHandler := handler.NewPostMortemHandler(postMortemService, log)
	pollingHandler := handler.NewPollingHandler(pollingService, log)
	healthHandler := handler.NewHealthHandler(db, publisher, pollingService, collector, log)

	// 12. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(
		siteHandler, eventHandler, notificationHandler,
		postMortemHandler, pollingHandler, healthHandler, hub,
	)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	pollingService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}
