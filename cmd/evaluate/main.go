package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/search"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/evaluation"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
)

func main() {
	var goldenPath string
	var minRecall float64
	flag.StringVar(&goldenPath, "golden", "config/golden_queries.json", "path to the golden query set")
	flag.Float64Var(&minRecall, "min-recall", 0, "exit non-zero when average recall@10 falls below this")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout carries only the JSON summary
	observability.InitLoggerTo(os.Stderr, cfg.OTEL.ServiceName+"-evaluate", cfg.Env)

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("Invalid golden queries")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgClient.Close()

	// Without Typesense the PostgreSQL search path is evaluated
	var searchRepo repositories.CompanySearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Typesense")
		}
		searchRepo = search.NewTypesenseAdapter(tsClient)
	}

	companies := services.NewCompanyService(database.NewCompanyAdapter(pgClient), searchRepo, nil)

	summary, err := evaluation.NewRunner(companies).Run(context.Background(), queries)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode summary")
	}
	fmt.Println(string(out))

	if summary.AvgRecallAt10 < minRecall {
		log.Error().Float64("recall", summary.AvgRecallAt10).Float64("min", minRecall).Msg("Recall below threshold")
		pgClient.Close()
		os.Exit(1)
	}
}
