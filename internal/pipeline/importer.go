// Package pipeline runs one import batch through the stages
// Loaded, Categorized, Deduplicated, RatesResolved, Prepared and Committed.
// Statement exports and historical ledgers share the same stages and differ
// only in the input adapter named by the source kind.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ledger/internal/logger"
)

// Options are the classification settings applied to every batch.
type Options struct {
	QuorumCards   []string
	EUBillMarkers []string
	Now           func() time.Time
}

// Importer wires the pipeline collaborators. It holds no per-batch state
// and may be shared.
type Importer struct {
	opts        Options
	categorizer Categorizer
	resolver    RateResolver
	engine      Reconciler
	store       Store
}

func NewImporter(opts Options, cat Categorizer, resolver RateResolver, engine Reconciler, store Store) *Importer {
	return &Importer{
		opts:        opts,
		categorizer: cat,
		resolver:    resolver,
		engine:      engine,
		store:       store,
	}
}

// Preview loads a source and runs it up to Prepared without writing.
func (im *Importer) Preview(ctx context.Context, src Source) (*Batch, error) {
	log := logger.FromContext(ctx)

	b := NewBatch(src.Name, src.Kind)
	p := NewPipeline(
		&LoadStep{Source: src, QuorumCards: im.opts.QuorumCards, EUBillMarkers: im.opts.EUBillMarkers},
		&CategorizeStep{Categorizer: im.categorizer},
		&DedupStep{Store: im.store},
		&ResolveRatesStep{Resolver: im.resolver},
		&PrepareStep{Engine: im.engine, Now: im.opts.Now},
	)
	if err := p.Execute(ctx, b); err != nil {
		return b, fmt.Errorf("Preview: %s: %w", src.Name, err)
	}
	b.Summary = Summarize(b)

	log.Info().
		Str("source", src.Name).
		Str("kind", string(src.Kind)).
		Int("total", b.Summary.Total).
		Int("new", b.Summary.New).
		Int("duplicate", b.Summary.Duplicate).
		Int("needs_rate", b.Summary.NeedsRate).
		Int("rejected", b.Summary.Rejected).
		Msg("import preview ready")
	return b, nil
}

// Commit writes a prepared batch. The report is returned even when the
// post-commit quorum recompute fails.
func (im *Importer) Commit(ctx context.Context, b *Batch) (*CommitReport, error) {
	step := &CommitStep{Store: im.store, Categorizer: im.categorizer}
	if err := step.Execute(ctx, b); err != nil {
		return b.Report, fmt.Errorf("Commit: %s: %w", b.Source, err)
	}
	return b.Report, nil
}

// ConfirmFunc decides whether a previewed batch is committed.
type ConfirmFunc func(Summary) bool

// AutoConfirm accepts every preview.
func AutoConfirm(Summary) bool { return true }

// Run previews src, asks confirm, and commits when confirmed. A batch with
// nothing ready is committed without asking so duplicates are still reported.
// A declined batch returns a nil report.
func (im *Importer) Run(ctx context.Context, src Source, confirm ConfirmFunc) (*Batch, *CommitReport, error) {
	b, err := im.Preview(ctx, src)
	if err != nil {
		return b, nil, err
	}
	if b.Summary.Ready > 0 && confirm != nil && !confirm(b.Summary) {
		log := logger.FromContext(ctx)
		log.Info().Str("source", src.Name).Msg("import declined")
		return b, nil, nil
	}
	report, err := im.Commit(ctx, b)
	return b, report, err
}
