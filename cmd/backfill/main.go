// cmd/backfill/main.go — Creates base price lines for legacy positions that
// only carry the mirrored unit price column.
// Usage: go run ./cmd/backfill [--dry-run]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"registras/internal/config"
	"registras/internal/infra"
	"registras/internal/repository"
	"registras/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report without committing")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.StatementTimeoutMS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	posRepo := repository.NewPositionRepository(db)
	lineRepo := repository.NewPriceLineRepository(db)
	svc := service.NewBackfillService(posRepo, lineRepo)

	report, err := svc.Backfill(context.Background(), *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("backfill failed")
	}

	log.Info().
		Int("examined", report.Examined).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Bool("dry_run", report.DryRun).
		Msg("done")
}
