package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/infra"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/notionsync"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "", "Path to config.yaml")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	notionToken := flag.String("notion-token", "", "Notion API token, overrides notion.token")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID, overrides notion.database_id")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	from, to, err := parseRange(*startDateStr, *endDateStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date range")
	}
	token, dbID := firstNonEmpty(*notionToken, cfg.Notion.Token), firstNonEmpty(*notionDBID, cfg.Notion.DatabaseID)
	if token == "" || dbID == "" {
		log.Fatal().Msg("Error: a Notion token and database id are required (flags or notion.* config)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := infra.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer store.Close()

	res, err := notionsync.SyncLedger(ctx, store, notionsync.NewNotionClient(token), dbID, notionsync.Options{
		From:   from,
		To:     to,
		DryRun: *dryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	verb := "Created"
	if *dryRun {
		verb = "Would create"
	}
	fmt.Printf("%s %d pages, skipped %d already in Notion, %d failed (of %d rows).\n",
		verb, res.Created, res.Skipped, res.Failed, res.Total)
}

func parseRange(start, end string) (civil.Date, civil.Date, error) {
	if start == "" || end == "" {
		return civil.Date{}, civil.Date{}, errors.New("--start-date and --end-date are required")
	}
	from, err := civil.ParseDate(start)
	if err != nil {
		return civil.Date{}, civil.Date{}, fmt.Errorf("start-date %q: want YYYY-MM-DD", start)
	}
	to, err := civil.ParseDate(end)
	if err != nil {
		return civil.Date{}, civil.Date{}, fmt.Errorf("end-date %q: want YYYY-MM-DD", end)
	}
	if to.Before(from) {
		return civil.Date{}, civil.Date{}, errors.New("end-date must not be before start-date")
	}
	return from, to, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
