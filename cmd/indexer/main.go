package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/search"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("Invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	adapter := search.NewTypesenseAdapter(tsClient)

	if reset {
		log.Info().Msg("Deleting companies collection")
		if err := adapter.DropSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	companies := services.NewCompanyService(database.NewCompanyAdapter(pgClient), adapter, nil)

	start := time.Now()
	n, err := companies.ReindexAll(ctx)
	if err != nil {
		return fmt.Errorf("reindexed %d companies before failing: %w", n, err)
	}
	log.Info().Int("companies", n).Dur("took", time.Since(start)).Msg("Indexed companies")
	return nil
}
