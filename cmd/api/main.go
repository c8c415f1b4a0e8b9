package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/cache"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/events"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/search"
	"github.com/zatekoja/businesstrust/backend/internal/api/handlers"
	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/api/routes"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
	"github.com/zatekoja/businesstrust/backend/pkg/password"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Postgres is the source of truth; nothing works without it
	if err := postgres.Migrate(&cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis backs the read cache and the event bus; fall back to in-process
	// versions when it is disabled or unreachable
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}
	if cacheProvider == nil {
		cacheProvider = cache.NewMemoryAdapter()
		eventBus = events.NewMemoryEventBus()
	}

	var searchRepo repositories.CompanySearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, search will use PostgreSQL")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			searchRepo = adapter
		}
	}

	// Initialize adapters
	userRepo := database.NewUserAdapter(pgClient)
	tokenRepo := database.NewTokenAdapter(pgClient)
	companyRepo := database.NewCachedCompanyAdapter(database.NewCompanyAdapter(pgClient), cacheProvider)
	ratingRepo := database.NewRatingAdapter(pgClient)
	commentRepo := database.NewCommentAdapter(pgClient)
	eventRepo := database.NewEventAdapter(pgClient)

	// Initialize services
	activity := services.NewActivityRecorder(eventRepo)
	credentials := services.NewCredentialService(userRepo, tokenRepo, password.NewBcryptHasher(cfg.Auth.BcryptCost), cfg.Auth.TokenTTL)
	accounts := services.NewAccountService(credentials, companyRepo, searchRepo, activity)
	directory := services.NewDirectoryService(credentials, userRepo, companyRepo)
	aggregation := services.NewAggregationService(companyRepo, ratingRepo, commentRepo, userRepo, searchRepo, eventBus, services.NewFeatureFlags(cfg.Features))
	ratingService := services.NewRatingService(companyRepo, ratingRepo, aggregation, activity, metrics)
	commentService := services.NewCommentService(companyRepo, commentRepo, activity, metrics)
	companyService := services.NewCompanyService(companyRepo, searchRepo, eventBus)

	cacheInvalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
	if err := cacheInvalidation.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start cache invalidation service")
	}

	// Keep the best rated companies' detail pages in cache
	services.NewCacheWarmingService(companyRepo, companyRepo).StartPeriodicWarming(ctx, 5*time.Minute)

	authLimiter := middleware.NewRateLimiter(cfg.Auth.LoginRatePerMinute)
	if err := authLimiter.TrustProxies(cfg.Server.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
	}
	stopCleanup := make(chan struct{})
	authLimiter.StartCleanup(5*time.Minute, stopCleanup)

	router := routes.NewRouter(
		handlers.NewAuthHandler(accounts),
		handlers.NewRatingHandler(directory, ratingService),
		handlers.NewCommentHandler(directory, commentService),
		handlers.NewCompanyHandler(directory, companyService, aggregation),
		handlers.NewHealthHandler(pgClient),
		routes.Options{
			AuthLimiter:    authLimiter,
			Loaders:        middleware.Loaders(userRepo, companyRepo),
			Cache:          middleware.NewCacheMiddleware(cacheProvider, metrics),
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	close(stopCleanup)
	cacheInvalidation.Stop()
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
