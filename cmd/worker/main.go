// Command worker imports a list of gs:// statement exports unattended,
// running them through the job queue with retries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (defaults to ./config.yaml if present)")
		kind       = flag.String("kind", string(statement.KindStatement), "Source kind: statement or historical")
		workers    = flag.Int("workers", 1, "Concurrent imports; overlapping exports should use 1")
		retries    = flag.Int("max-retries", inmemory.DefaultMaxRetries, "Attempts after the first for transient failures")
	)
	flag.Parse()

	log := logger.New()
	if flag.NArg() == 0 {
		log.Fatal().Msg("Usage: worker [flags] gs://bucket/object.csv...")
	}
	if _, err := statement.AdapterFor(statement.Kind(*kind), 0); err != nil {
		log.Fatal().Err(err).Msg("Invalid -kind")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, cancel := signal.NotifyContext(logger.WithContext(context.Background(), log), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer a.Close()

	objects, err := gcsuploader.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer objects.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(flag.NArg(), *workers, jobStore)
	if err := jobQueue.Start(ctx, jobs.NewImportHandler(a.Importer, objects)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	ids := make([]string, 0, flag.NArg())
	for _, uri := range flag.Args() {
		if _, _, err := gcsuploader.ParseURI(uri); err != nil {
			log.Error().Err(err).Str("uri", uri).Msg("Skipping invalid URI")
			continue
		}
		job := &jobs.ImportJob{URI: uri, Kind: statement.Kind(*kind), MaxRetries: *retries}
		if err := jobQueue.PublishImport(ctx, job); err != nil {
			log.Fatal().Err(err).Str("uri", uri).Msg("Failed to publish job")
		}
		log.Info().Str("job_id", job.JobID).Str("uri", uri).Msg("Import queued")
		ids = append(ids, job.JobID)
	}

	finished, waitErr := waitForJobs(ctx, jobStore, ids, 200*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := jobQueue.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	failed := printResults(finished)
	if waitErr != nil {
		log.Error().Err(waitErr).Msg("Interrupted before all imports finished")
		os.Exit(1)
	}
	if failed > 0 || len(ids) < flag.NArg() {
		os.Exit(1)
	}
}

// waitForJobs polls the store until every job is completed or failed, or
// ctx ends. It returns the jobs' latest state in ids order.
func waitForJobs(ctx context.Context, store jobs.JobStore, ids []string, poll time.Duration) ([]*jobs.ImportJob, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		out := make([]*jobs.ImportJob, 0, len(ids))
		done := true
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil {
				return out, fmt.Errorf("waitForJobs: %w", err)
			}
			if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
				done = false
			}
			out = append(out, job)
		}
		if done {
			return out, nil
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-ticker.C:
		}
	}
}

// printResults writes one line per job and returns the number that failed.
func printResults(finished []*jobs.ImportJob) int {
	failed := 0
	for _, job := range finished {
		switch {
		case job.Status == jobs.JobStatusFailed:
			failed++
			fmt.Printf("FAILED  %s  %s\n", job.URI, job.Error)
		case job.Report != nil:
			fmt.Printf("OK      %s  inserted=%d skipped=%d failed=%d\n",
				job.URI, job.Report.Inserted, job.Report.SkippedDuplicate, len(job.Report.Failed))
		default:
			fmt.Printf("%-7s %s\n", job.Status, job.URI)
		}
	}
	return failed
}
