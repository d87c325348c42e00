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
	"github.com/zatekoja/clinic-site/internal/adapters/database"
	"github.com/zatekoja/clinic-site/internal/adapters/search"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
	"github.com/zatekoja/clinic-site/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the content collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("clinic-indexer", cfg.Env)

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
		log.Info().Dur("next_in", interval).Msg("Reindex complete")

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

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", typesense.ContentCollection).Msg("Deleting collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.ContentCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}

	index := search.NewTypesenseAdapter(tsClient)
	if err := index.EnsureCollection(ctx); err != nil {
		return err
	}

	// Reindexing publishes nothing, so no event bus or media storage is needed.
	content := services.NewContentService(database.NewContentBlockAdapter(pgClient), nil, index, nil)
	doctors := services.NewDoctorService(database.NewDoctorAdapter(pgClient), nil, index, nil)

	blocks, err := content.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("content blocks: %w", err)
	}
	doctorCount, err := doctors.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("doctors: %w", err)
	}

	log.Info().Int("blocks", blocks).Int("doctors", doctorCount).Msg("Indexed site content")
	return nil
}
