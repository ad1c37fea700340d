// Package bigquery is the BigQuery ledger backend. Every operation is exposed
// as a XWithClient function taking a shared client and table set, and the
// BigQueryLedgerRepository ties them together behind ledger.Store.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

// Tables holds fully qualified, backtick-quoted table names for one dataset.
type Tables struct {
	Project string
	Dataset string
}

func (t Tables) name(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", t.Project, t.Dataset, table)
}

func (t Tables) Transactions() string   { return t.name("transactions") }
func (t Tables) Patterns() string       { return t.name("merchant_mapping") }
func (t Tables) Categories() string     { return t.name("categories") }
func (t Tables) ExchangeRates() string  { return t.name("exchange_rates") }
func (t Tables) Reimbursements() string { return t.name("reimbursements") }

// BigQueryLedgerRepository implements ledger.Store with a single shared client.
type BigQueryLedgerRepository struct {
	client *bigquery.Client
	tables Tables
}

var _ ledger.Store = (*BigQueryLedgerRepository)(nil)

// NewBigQueryLedgerRepository creates the repository and its client.
func NewBigQueryLedgerRepository(ctx context.Context, project, dataset string) (*BigQueryLedgerRepository, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerRepository: creating client: %w", err)
	}
	return &BigQueryLedgerRepository{
		client: client,
		tables: Tables{Project: project, Dataset: dataset},
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryLedgerRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryLedgerRepository) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	return InsertTransactionWithClient(ctx, r.client, r.tables, tx)
}

func (r *BigQueryLedgerRepository) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	return ExistingFingerprintsWithClient(ctx, r.client, r.tables, fingerprints)
}

func (r *BigQueryLedgerRepository) QueryTransactions(ctx context.Context, f ledger.Filter) ([]*domain.Transaction, error) {
	return QueryTransactionsWithClient(ctx, r.client, r.tables, f)
}

func (r *BigQueryLedgerRepository) MineDescriptionPatterns(ctx context.Context, minCount int) ([]ledger.HistoricalPattern, error) {
	return MineDescriptionPatternsWithClient(ctx, r.client, r.tables, minCount)
}

func (r *BigQueryLedgerRepository) ListMerchantPatterns(ctx context.Context) ([]domain.MerchantPattern, error) {
	return ListMerchantPatternsWithClient(ctx, r.client, r.tables)
}

func (r *BigQueryLedgerRepository) CountMerchantPatterns(ctx context.Context) (int, error) {
	return CountMerchantPatternsWithClient(ctx, r.client, r.tables)
}

func (r *BigQueryLedgerRepository) SaveMerchantPattern(ctx context.Context, p domain.MerchantPattern) error {
	return SaveMerchantPatternWithClient(ctx, r.client, r.tables, p)
}

func (r *BigQueryLedgerRepository) ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	return ListCategoryMappingsWithClient(ctx, r.client, r.tables)
}

func (r *BigQueryLedgerRepository) SeedCategories(ctx context.Context, mappings []domain.CategoryMapping) (int, error) {
	return SeedCategoriesWithClient(ctx, r.client, r.tables, mappings)
}

func (r *BigQueryLedgerRepository) LoadExchangeRates(ctx context.Context) (map[civil.Date]decimal.Decimal, error) {
	return LoadExchangeRatesWithClient(ctx, r.client, r.tables)
}

func (r *BigQueryLedgerRepository) SaveExchangeRate(ctx context.Context, day civil.Date, rate decimal.Decimal) error {
	return SaveExchangeRateWithClient(ctx, r.client, r.tables, day, rate)
}

func (r *BigQueryLedgerRepository) RecomputeQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	return RecomputeQuorumTotalsWithClient(ctx, r.client, r.tables)
}

func (r *BigQueryLedgerRepository) ListQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	return ListQuorumTotalsWithClient(ctx, r.client, r.tables)
}

// ApplyMigrations runs the embedded schema migrations against the dataset.
func (r *BigQueryLedgerRepository) ApplyMigrations(ctx context.Context, appliedBy string) (int, error) {
	return ApplyMigrationsWithClient(ctx, r.client, r.tables, appliedBy)
}
