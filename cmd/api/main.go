package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-ledger/internal/api/handlers"
	"github.com/dvloznov/statement-ledger/internal/api/middleware"
	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (defaults to ./config.yaml if present)")
		addr       = flag.String("addr", "", "Listen address, overrides api.addr")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if *addr != "" {
		cfg.API.Addr = *addr
	}

	ctx := logger.WithContext(context.Background(), log)

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
	jobQueue := inmemory.NewQueue(100, cfg.API.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, jobs.NewImportHandler(a.Importer, objects)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}
	log.Info().Int("workers", cfg.API.Workers).Msg("Job workers started")

	rt := handlers.Router{
		Transactions:   handlers.NewTransactionsHandler(a.Store, log),
		Categories:     handlers.NewCategoriesHandler(a.Store, log),
		Patterns:       handlers.NewPatternsHandler(a.Categorizer, log),
		Reimbursements: handlers.NewReimbursementsHandler(a.Store, log),
		Imports:        handlers.NewImportsHandler(jobQueue, jobStore, log),
	}

	handler := middleware.Chain(rt.Mux(),
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
		middleware.Auth(cfg.API.Token),
	)
	if cfg.API.Token == "" {
		log.Warn().Msg("api.token is empty, requests are not authenticated")
	}

	server := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.API.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight imports finish before the workers' context goes away.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
