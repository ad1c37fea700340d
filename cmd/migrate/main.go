package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/dvloznov/statement-ledger/internal/config"
	infraBQ "github.com/dvloznov/statement-ledger/internal/infra/bigquery"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

type target struct {
	Project string
	Dataset string
}

// resolveTarget lets explicit flags override the configured BigQuery dataset.
func resolveTarget(cfg *config.Config, project, dataset string) (target, error) {
	t := target{Project: cfg.BigQuery.Project, Dataset: cfg.BigQuery.Dataset}
	if project != "" {
		t.Project = project
	}
	if dataset != "" {
		t.Dataset = dataset
	}
	if t.Project == "" {
		return t, errors.New("a GCP project is required: pass -project or set bigquery.project")
	}
	if t.Dataset == "" {
		return t, errors.New("a dataset is required: pass -dataset or set bigquery.dataset")
	}
	return t, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml")
		projectID  = flag.String("project", "", "GCP project ID (overrides bigquery.project)")
		datasetID  = flag.String("dataset", "", "BigQuery dataset ID (overrides bigquery.dataset)")
		appliedBy  = flag.String("applied-by", "migrate-cli", "name recorded in schema_migrations")
	)
	flag.Parse()

	log := logger.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	ctx := logger.WithContext(context.Background(), log)

	t, err := resolveTarget(cfg, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid migration target")
	}

	repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, t.Project, t.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to BigQuery")
	}
	defer repo.Close()

	log.Info().Str("project", t.Project).Str("dataset", t.Dataset).Msg("connected to BigQuery")

	n, err := repo.ApplyMigrations(ctx, *appliedBy)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if n == 0 {
		log.Info().Msg("no new migrations to apply, dataset is up to date")
		return
	}
	log.Info().Int("applied", n).Msg("migrations applied")
}
