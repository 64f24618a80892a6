// cmd/importcsv/main.go — Imports positions from a CSV export.
// Usage: go run ./cmd/importcsv [--dry-run] file.csv
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"registras/internal/config"
	"registras/internal/infra"
	"registras/internal/pricing"
	"registras/internal/repository"
	"registras/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "validate and report without committing")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if flag.NArg() != 1 {
		log.Fatal().Msg("usage: importcsv [--dry-run] file.csv")
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.StatementTimeoutMS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("cannot open file")
	}
	defer f.Close()

	posRepo := repository.NewPositionRepository(db)
	lineRepo := repository.NewPriceLineRepository(db)
	// No redis, no dispatcher: batch imports skip the cache and audit queue.
	priceSvc := service.NewPriceService(lineRepo, posRepo, pricing.NewSystemClock(), nil, nil)
	svc := service.NewImportService(posRepo, priceSvc)

	report, err := svc.ImportCSV(context.Background(), f, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	for _, re := range report.Errors {
		log.Warn().Int("row", re.Row).Msg(re.Message)
	}
	log.Info().
		Int("total", report.Total).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("prices_set", report.PricesSet).
		Bool("dry_run", report.DryRun).
		Msg("done")
}
