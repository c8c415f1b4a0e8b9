package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/events"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/search"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
)

func main() {
	var resetScores bool
	flag.BoolVar(&resetScores, "reset-scores", false, "zero reputation and recommendation scores instead of recomputing aggregates")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-backfill", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgClient.Close()

	// Events published here reach the API's cache invalidation only through Redis
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, API caches expire by TTL only")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
			defer eventBus.Close()
		}
	}

	var searchRepo repositories.CompanySearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, search index not refreshed")
		} else {
			searchRepo = search.NewTypesenseAdapter(tsClient)
		}
	}

	aggregation := services.NewAggregationService(
		database.NewCompanyAdapter(pgClient),
		database.NewRatingAdapter(pgClient),
		database.NewCommentAdapter(pgClient),
		database.NewUserAdapter(pgClient),
		searchRepo,
		eventBus,
		services.NewFeatureFlags(cfg.Features),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	if resetScores {
		n, err := aggregation.ResetScores(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset scores")
		}
		log.Info().Int64("companies", n).Dur("took", time.Since(start)).Msg("Scores reset")
		return
	}

	n, err := aggregation.RecomputeAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("refreshed", n).Msg("Aggregate backfill failed")
	}
	log.Info().Int("companies", n).Dur("took", time.Since(start)).Msg("Aggregate backfill complete")
}
