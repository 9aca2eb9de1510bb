package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lagospaces/server/config"
	"lagospaces/server/internal/api"
	"lagospaces/server/internal/auth"
	"lagospaces/server/internal/cache"
	"lagospaces/server/internal/database"
	"lagospaces/server/internal/geocoding"
	"lagospaces/server/internal/notify"
	"lagospaces/server/internal/processor"
	"lagospaces/server/internal/queue"
	"lagospaces/server/internal/scheduler"
	"lagospaces/server/internal/search"
	"lagospaces/server/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.Server.LogLevel).Warn("Unknown log level, using info")
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}
	if err := database.Seed(db.GetDB()); err != nil {
		logger.WithError(err).Fatal("Failed to seed database")
	}

	geocoder := geocoding.NewGeocoder(logger, cfg.Geocoder.URL)
	if _, err := db.UpdateMissingCoordinates(ctx, geocoder); err != nil {
		logger.WithError(err).Error("Failed to update coordinates")
	}

	// Search results are cached in Redis when it is configured, in memory otherwise
	var searchCache cache.Cache = cache.NewMemoryCache()
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, caching search results in memory")
		} else {
			defer rc.Close()
			searchCache = rc
		}
	}
	searchService := search.NewService(db, searchCache, cfg.Cache.SearchTTL, logger)
	// The store is rebuilt on every start, so results cached by an earlier run are dropped
	if err := searchService.Invalidate(ctx); err != nil {
		logger.WithError(err).Warn("Failed to clear search cache")
	}

	telegram := notify.NewService(notify.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		APIURL:   cfg.Telegram.APIURL,
	}, logger)
	if !telegram.Enabled() {
		logger.Info("Telegram forwarding disabled")
	}

	// Event pipeline: completed wizards publish events that are applied in the background
	events := queue.NewEventQueue(cfg.EventProcessing.BufferSize, logger)
	eventProcessor := processor.NewEventProcessor(db.GetDB(), events, processor.Config{
		ProcessorCount: cfg.EventProcessing.ProcessorCount,
		MaxRetries:     cfg.EventProcessing.MaxRetries,
		RetryDelay:     cfg.EventProcessing.RetryDelay,
	}, geocoder, telegram, searchService, logger)
	eventProcessor.Start()

	if cfg.UsesDefaultJWTSecret() {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development default")
	}
	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(db, tokens, cfg.Delays.Login, cfg.Delays.Signup, logger)

	wizards := &wizard.Manager{
		Booking: wizard.NewBookingWizard(db, events, wizard.BookingConfig{
			Fee:            cfg.Booking.Fee,
			RefundWindow:   cfg.Booking.RefundWindow,
			PaymentDelay:   cfg.Delays.Payment,
			AgreementDelay: cfg.Delays.Agreement,
			SessionTTL:     cfg.Wizard.SessionTTL,
		}, logger),
		Verification: wizard.NewVerificationWizard(events, wizard.VerificationConfig{
			SubmitDelay:   cfg.Delays.Verification,
			SessionTTL:    cfg.Wizard.SessionTTL,
			MaxUploadSize: cfg.Wizard.MaxUploadSize,
		}, logger),
		Listing: wizard.NewListingWizard(events, wizard.ListingConfig{
			SubmitDelay:   cfg.Delays.PostProperty,
			SessionTTL:    cfg.Wizard.SessionTTL,
			MaxUploadSize: cfg.Wizard.MaxUploadSize,
		}, logger),
	}

	jobs := scheduler.NewScheduler(wizards, db, tokens, cfg.Booking.RefundWindow, logger)
	jobs.Start()

	handler := api.NewHandler(api.Dependencies{
		DB:            db,
		Auth:          authService,
		Search:        searchService,
		Wizards:       wizards,
		BookingFee:    cfg.Booking.Fee,
		MaxUploadSize: cfg.Wizard.MaxUploadSize,
	}, logger)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}

	jobs.Stop()
	eventProcessor.Stop()
	logger.Info("Server gracefully stopped")
}
