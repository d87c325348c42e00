package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/adapters/cache"
	"github.com/zatekoja/clinic-site/internal/adapters/database"
	"github.com/zatekoja/clinic-site/internal/adapters/events"
	"github.com/zatekoja/clinic-site/internal/adapters/providers/holidays"
	"github.com/zatekoja/clinic-site/internal/adapters/search"
	"github.com/zatekoja/clinic-site/internal/adapters/storage"
	"github.com/zatekoja/clinic-site/internal/api/handlers"
	"github.com/zatekoja/clinic-site/internal/api/middleware"
	"github.com/zatekoja/clinic-site/internal/api/routes"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/redis"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/clinic-site/internal/infrastructure/notifications"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
	"github.com/zatekoja/clinic-site/pkg/config"
	"github.com/zatekoja/clinic-site/pkg/secrets"
)

func main() {
	// Secrets from Vault land in the environment before config is read
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 30*time.Second)
	vaultResult, vaultErr := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv())
	vaultCancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	if vaultErr != nil {
		log.Warn().Err(vaultErr).Str("path", vaultResult.Path).Msg("Failed to load secrets from Vault")
	} else if vaultResult.Enabled {
		log.Info().Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("Secrets loaded from Vault")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableOTELLogs(cfg.OTEL.ServiceName)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	loc := cfg.Site.Location()

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Initialize Redis client. Without it the site runs with an in-process
	// event bus and no shared caching.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; caching disabled and events stay in-process")
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Typesense is optional; search falls back to the database.
	var searchIndex providers.SearchIndex
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; search falls back to the database")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.EnsureCollection(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			searchIndex = adapter
		}
	}

	media, err := storage.NewLocalStorage(cfg.Media.Dir, cfg.Media.BaseURL, cfg.Media.MaxBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Media.Dir).Msg("Failed to initialize media storage")
	}

	// Initialize adapters
	var blockRepo repositories.ContentBlockRepository = database.NewContentBlockAdapter(pgClient)
	if cacheProvider != nil {
		blockRepo = database.NewCachedContentBlockAdapter(blockRepo, cacheProvider)
	}
	doctorRepo := database.NewDoctorAdapter(pgClient)
	holidayRepo := database.NewHolidayAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	adminRepo := database.NewAdminUserAdapter(pgClient)

	// Outbound notifications are optional per channel
	var emailSender providers.EmailSender
	if sender, err := notifications.NewHTTPEmailSender(cfg.Notifications.EmailAPIURL, cfg.Notifications.EmailAPIKey, cfg.Notifications.EmailFrom); err != nil {
		log.Warn().Err(err).Msg("Email notifications disabled")
	} else {
		emailSender = sender
	}
	var whatsappSender providers.MessageSender
	if sender, err := notifications.NewWhatsAppCloudSender(cfg.Notifications.WhatsAppToken, cfg.Notifications.WhatsAppPhoneNumber); err != nil {
		log.Info().Msg("WhatsApp notifications disabled")
	} else {
		whatsappSender = sender
	}

	holidayProvider := holidays.NewHolidayProvider(holidays.ProviderConfig{
		APIURL:              cfg.Holidays.APIURL,
		CountryCode:         cfg.Holidays.CountryCode,
		AllowStaticFallback: true,
	})

	pageDefaults, err := services.EmbeddedPageDefaults()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load page defaults")
	}

	// Initialize services
	notificationService := services.NewNotificationService(emailSender, whatsappSender, cfg.Notifications.ClinicEmail, cfg.Site.BaseURL, metrics)
	contentService := services.NewContentService(blockRepo, eventBus, searchIndex, media)
	doctorService := services.NewDoctorService(doctorRepo, eventBus, searchIndex, media)
	holidayService := services.NewHolidayService(holidayRepo, holidayProvider, eventBus, loc)
	appointmentService := services.NewAppointmentService(appointmentRepo, holidayRepo, notificationService, metrics, loc)
	calendarService := services.NewCalendarService(appointmentRepo, holidayRepo, loc)
	authService := services.NewAuthService(adminRepo, notificationService, services.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
	})
	exportService := services.NewExportService(appointmentRepo, holidayRepo, blockRepo)
	pageService := services.NewPageService(blockRepo, doctorRepo, pageDefaults)
	searchService := services.NewSearchService(searchIndex, blockRepo, doctorRepo)

	if cfg.Auth.BootstrapEmail != "" {
		if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
			log.Error().Err(err).Msg("Failed to create bootstrap admin")
		}
	}

	if cfg.Holidays.SyncEnabled {
		if err := holidayService.StartScheduler(cfg.Holidays.SyncAt); err != nil {
			log.Error().Err(err).Msg("Failed to start holiday sync scheduler")
		}
		defer holidayService.StopScheduler()
	}

	// Drop cached HTTP responses whenever content changes
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
		}
		go func() {
			if _, err := services.NewCacheWarmingService(blockRepo).WarmCache(ctx); err != nil {
				log.Warn().Err(err).Msg("Cache warming failed")
			}
		}()
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	// Set up router
	router := routes.NewRouter(
		routes.Handlers{
			Page:        handlers.NewPageHandler(pageService),
			Content:     handlers.NewContentHandler(contentService),
			Doctor:      handlers.NewDoctorHandler(doctorService),
			Holiday:     handlers.NewHolidayHandler(holidayService, loc),
			Appointment: handlers.NewAppointmentHandler(appointmentService, calendarService, cacheProvider),
			Auth:        handlers.NewAuthHandler(authService, cacheProvider),
			Export:      handlers.NewExportHandler(exportService),
			Search:      handlers.NewSearchHandler(searchService, contentService, doctorService),
			SSE:         handlers.NewSSEHandler(eventBus),
			Media:       http.FileServer(http.Dir(media.Dir())),
		},
		routes.Options{
			Auth:           authService,
			Cache:          cacheMiddleware,
			Blocks:         blockRepo,
			Doctors:        doctorRepo,
			AllowedOrigins: cfg.Site.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	// Create HTTP server. WriteTimeout stays off for the event stream.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Streams watch the request context, so cancelling ctx ends them on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Let in-flight appointment notifications finish
	appointmentService.Wait()

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
