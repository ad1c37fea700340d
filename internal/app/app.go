// Package app assembles the ledger store, categorizer, rate resolver and
// importer from configuration for the command-line tools and the API server.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/infra"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/rates"
	"github.com/dvloznov/statement-ledger/internal/reconcile"
)

// Options adjust how the components are built.
type Options struct {
	// Manual enables the interactive rate prompt for single-date lookups.
	Manual rates.ManualEntry
	// Source overrides the Frankfurter client.
	Source rates.Source
	Now    func() time.Time
}

// App holds the wired components. Close releases the store.
type App struct {
	Config      *config.Config
	Store       ledger.Store
	Categorizer *categorizer.Categorizer
	Resolver    *rates.Resolver
	Engine      *reconcile.Engine
	Importer    *pipeline.Importer
}

// Open builds every component on top of the configured store backend.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	store, err := infra.OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	a, err := Build(ctx, cfg, store, opts)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// Build wires the components around an already opened store.
func Build(ctx context.Context, cfg *config.Config, store ledger.Store, opts Options) (*App, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	cat, err := categorizer.New(ctx, store,
		categorizer.WithFuzzyRules(FuzzyRules(cfg.Categorizer.FuzzyRules)),
		categorizer.WithBootstrapMinCount(cfg.Categorizer.BootstrapMinCount),
		categorizer.WithClock(now),
	)
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	source := opts.Source
	if source == nil {
		source = rates.NewFrankfurterSource(cfg.Rates.BaseURL, cfg.Rates.Timeout)
	}
	rateOpts := []rates.Option{
		rates.WithProbeDays(cfg.Rates.ProbeDays),
		rates.WithConcurrency(cfg.Rates.Concurrency),
	}
	if opts.Manual != nil {
		rateOpts = append(rateOpts, rates.WithManualEntry(opts.Manual))
	}
	resolver, err := rates.NewResolver(ctx, source, store, rateOpts...)
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	engine := reconcile.NewEngine()
	importer := pipeline.NewImporter(pipeline.Options{
		QuorumCards:   cfg.Import.QuorumCards,
		EUBillMarkers: cfg.Import.EUBillMarkers,
		Now:           now,
	}, cat, resolver, engine, store)

	return &App{
		Config:      cfg,
		Store:       store,
		Categorizer: cat,
		Resolver:    resolver,
		Engine:      engine,
		Importer:    importer,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// FuzzyRules converts the configured keyword table.
func FuzzyRules(in []config.FuzzyRule) []categorizer.FuzzyRule {
	out := make([]categorizer.FuzzyRule, 0, len(in))
	for _, r := range in {
		out = append(out, categorizer.FuzzyRule{Keyword: r.Keyword, Subcategory: r.Subcategory})
	}
	return out
}
