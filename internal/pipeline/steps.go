package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/reconcile"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// HistoryConfidence is given to rows that arrive with a confirmed subcategory.
const HistoryConfidence = 100

// PipelineStep is one transition of the batch state machine.
type PipelineStep interface {
	Execute(ctx context.Context, b *Batch) error
}

// Step 1: LoadStep reads the source and normalizes its rows.
type LoadStep struct {
	Source        Source
	QuorumCards   []string
	EUBillMarkers []string
}

func (s *LoadStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StageNew); err != nil {
		return err
	}
	raw, adapter, err := s.Source.read(ctx)
	if err != nil {
		return err
	}

	n := statement.NewNormalizer(statement.Options{
		Source:         s.Source.Name,
		SourceCurrency: adapter.Currency(),
		QuorumCards:    s.QuorumCards,
		EUBillMarkers:  s.EUBillMarkers,
	})
	b.Normalized = n.Normalize(ctx, raw)
	b.Items = make([]*Item, 0, len(b.Normalized.Rows))
	for _, row := range b.Normalized.Rows {
		b.Items = append(b.Items, &Item{Row: row})
	}
	return b.advance(StageNew, StageLoaded)
}

// Step 2: CategorizeStep assigns a category triple to every row.
type CategorizeStep struct {
	Categorizer Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StageLoaded); err != nil {
		return err
	}
	for _, it := range b.Items {
		it.Category = s.assign(it.Row)
	}
	return b.advance(StageLoaded, StageCategorized)
}

func (s *CategorizeStep) assign(row statement.Row) categorizer.Result {
	if row.IsQuorum {
		return s.Categorizer.Categorize(row.Description, true)
	}

	if row.Subcategory != "" {
		if m, ok := s.Categorizer.Lookup(row.Subcategory); ok {
			return categorizer.Result{
				Subcategory: m.Subcategory,
				Category:    m.Category,
				BudgetType:  m.BudgetType,
				Confidence:  HistoryConfidence,
				Method:      domain.MethodHistory,
			}
		}
		return categorizer.Result{
			Subcategory: row.Subcategory,
			Category:    domain.UnexpectedCategory,
			BudgetType:  domain.UnexpectedBudgetType,
			Confidence:  HistoryConfidence,
			Method:      domain.MethodHistory,
		}
	}

	res := s.Categorizer.Categorize(row.Description, false)
	if res.Confidence == 0 {
		res.Subcategory = domain.UncategorizedSubcategory
		res.Category = domain.UnexpectedCategory
		res.BudgetType = domain.UnexpectedBudgetType
		res.Method = domain.MethodNone
	}
	return res
}

// Step 3: DedupStep marks rows whose fingerprint is already in the ledger.
type DedupStep struct {
	Store Store
}

func (s *DedupStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StageCategorized); err != nil {
		return err
	}
	fps := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		fps = append(fps, it.Row.Fingerprint)
	}
	existing, err := s.Store.ExistingFingerprints(ctx, fps)
	if err != nil {
		return fmt.Errorf("DedupStep: %w", err)
	}
	for _, it := range b.Items {
		if existing[it.Row.Fingerprint] {
			it.Status = StatusDuplicate
		}
	}
	return b.advance(StageCategorized, StageDeduplicated)
}

// Step 4: ResolveRatesStep bulk-resolves rates for the distinct days of new
// regular rows. Quorum and EU-bill rows need no rate.
type ResolveRatesStep struct {
	Resolver RateResolver
}

func (s *ResolveRatesStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StageDeduplicated); err != nil {
		return err
	}
	seen := make(map[civil.Date]bool)
	var days []civil.Date
	for _, it := range b.Fresh() {
		if it.Row.Regime() != domain.RegimeRegular || seen[it.Row.Date] {
			continue
		}
		seen[it.Row.Date] = true
		days = append(days, it.Row.Date)
	}

	b.Rates = map[civil.Date]decimal.Decimal{}
	if len(days) > 0 {
		b.Rates = s.Resolver.FetchBulk(ctx, days)
	}
	for _, it := range b.Fresh() {
		if it.Row.Regime() != domain.RegimeRegular {
			continue
		}
		if rate, ok := b.Rates[it.Row.Date]; ok {
			it.Rate = decimal.NewNullDecimal(rate)
		}
	}
	return b.advance(StageDeduplicated, StageRatesResolved)
}

// Step 5: PrepareStep reconciles currencies and builds ledger transactions.
// Regular rows still lacking a rate are withheld as needs-rate.
type PrepareStep struct {
	Engine Reconciler
	Now    func() time.Time
}

func (s *PrepareStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StageRatesResolved); err != nil {
		return err
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	for _, it := range b.Fresh() {
		amounts, err := s.Engine.Reconcile(reconcile.Input{
			Regime:         it.Row.Regime(),
			Amount:         it.Row.Amount,
			SourceCurrency: it.Row.SourceCurrency,
			Rate:           it.Rate,
		})
		if errors.Is(err, reconcile.ErrNeedsRate) {
			it.Status = StatusNeedsRate
			continue
		}
		if err != nil {
			return fmt.Errorf("PrepareStep: line %d: %w", it.Row.Line, err)
		}

		tx := &domain.Transaction{
			Fingerprint: it.Row.Fingerprint,
			Date:        it.Row.Date,
			Description: it.Row.Description,
			Subcategory: it.Category.Subcategory,
			Category:    it.Category.Category,
			BudgetType:  it.Category.BudgetType,
			IsQuorum:    it.Row.IsQuorum,
			IsEUBill:    it.Row.IsEUBill,
			IsManual:    it.Category.Method == domain.MethodHistory,
			CardLast4:   it.Row.CardLast4,
			Confidence:  it.Category.Confidence,
			Method:      it.Category.Method,
			Source:      b.Source,
			ImportedAt:  now,
		}
		amounts.ApplyTo(tx)
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("PrepareStep: line %d: %w", it.Row.Line, err)
		}
		it.Tx = tx
		it.Status = StatusReady
	}
	return b.advance(StageRatesResolved, StagePrepared)
}

// Step 6: CommitStep inserts each ready row on its own. Duplicates are
// skips and other failures are recorded per row; neither stops the batch.
type CommitStep struct {
	Store       Store
	Categorizer Categorizer
}

func (s *CommitStep) Execute(ctx context.Context, b *Batch) error {
	if err := b.require(StagePrepared); err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	report := &CommitReport{}
	for _, it := range b.Items {
		switch it.Status {
		case StatusDuplicate:
			report.SkippedDuplicate++
			continue
		case StatusNeedsRate:
			report.NeedsRate++
			continue
		case StatusReady:
		default:
			continue
		}

		err := s.Store.InsertTransaction(ctx, it.Tx)
		switch {
		case errors.Is(err, ledger.ErrDuplicate):
			it.Status = StatusSkipped
			report.SkippedDuplicate++
		case err != nil:
			it.Status = StatusFailed
			report.Failed = append(report.Failed, RowError{Row: it.Row, Err: err})
			log.Warn().Err(err).Int("line", it.Row.Line).Str("fingerprint", it.Row.Fingerprint).Msg("failed to insert transaction")
		default:
			it.Status = StatusInserted
			report.Inserted++
			if it.Tx.NeedsReview() {
				report.NeedsReview++
			}
		}
	}

	for _, it := range b.Items {
		if it.Status != StatusInserted || it.Category.Confidence <= 0 {
			continue
		}
		if err := s.Categorizer.Learn(ctx, it.Row.Description, it.Category.Subcategory); err != nil {
			log.Warn().Err(err).Str("description", it.Row.Description).Msg("failed to learn merchant pattern")
			continue
		}
		report.Learned++
	}

	b.Report = report
	if err := b.advance(StagePrepared, StageCommitted); err != nil {
		return err
	}

	if report.Inserted > 0 {
		totals, err := s.Store.RecomputeQuorumTotals(ctx)
		if err != nil {
			return fmt.Errorf("CommitStep: recompute quorum totals: %w", err)
		}
		report.QuorumTotals = totals
	}

	log.Info().
		Int("inserted", report.Inserted).
		Int("skipped", report.SkippedDuplicate).
		Int("needs_rate", report.NeedsRate).
		Int("failed", len(report.Failed)).
		Msg("import committed")
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs the steps sequentially. Cancellation is honoured between
// steps only.
func (p *Pipeline) Execute(ctx context.Context, b *Batch) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, b); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
