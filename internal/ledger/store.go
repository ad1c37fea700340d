// Package ledger defines the persisted state shared by the import pipeline and
// the reporting surfaces: transactions, category mappings, merchant patterns,
// the exchange rate cache and monthly Quorum totals.
package ledger

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// ErrDuplicate is returned by InsertTransaction when the fingerprint is
// already stored. Callers treat it as a skip, not a failure.
var ErrDuplicate = errors.New("duplicate fingerprint")

// Filter selects transactions. Zero values leave a field unconstrained.
type Filter struct {
	From        civil.Date
	To          civil.Date
	Category    string
	Subcategory string
	IsQuorum    *bool
	IsManual    *bool
	Limit       int
}

// Match reports whether tx satisfies the filter.
func (f Filter) Match(tx *domain.Transaction) bool {
	if f.From.IsValid() && tx.Date.Before(f.From) {
		return false
	}
	if f.To.IsValid() && tx.Date.After(f.To) {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && tx.Subcategory != f.Subcategory {
		return false
	}
	if f.IsQuorum != nil && tx.IsQuorum != *f.IsQuorum {
		return false
	}
	if f.IsManual != nil && tx.IsManual != *f.IsManual {
		return false
	}
	return true
}

// HistoricalPattern is a (description, subcategory) pair mined from the ledger.
type HistoricalPattern struct {
	Description string
	Subcategory string
	Count       int
}

type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error)
	QueryTransactions(ctx context.Context, f Filter) ([]*domain.Transaction, error)
	// MineDescriptionPatterns returns non-Quorum (description, subcategory)
	// pairs seen at least minCount times, most frequent first.
	MineDescriptionPatterns(ctx context.Context, minCount int) ([]HistoricalPattern, error)
}

type PatternStore interface {
	// ListMerchantPatterns returns patterns most-confident first.
	ListMerchantPatterns(ctx context.Context) ([]domain.MerchantPattern, error)
	CountMerchantPatterns(ctx context.Context) (int, error)
	SaveMerchantPattern(ctx context.Context, p domain.MerchantPattern) error
}

type CategoryStore interface {
	ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error)
	// SeedCategories inserts missing mappings and leaves existing ones alone.
	SeedCategories(ctx context.Context, mappings []domain.CategoryMapping) (int, error)
}

type RateCache interface {
	LoadExchangeRates(ctx context.Context) (map[civil.Date]decimal.Decimal, error)
	SaveExchangeRate(ctx context.Context, day civil.Date, rate decimal.Decimal) error
}

type ReimbursementStore interface {
	// RecomputeQuorumTotals aggregates Quorum amount_usd per month and
	// replaces the stored totals.
	RecomputeQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error)
	ListQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error)
}

// Store is a complete ledger backend.
type Store interface {
	TransactionStore
	PatternStore
	CategoryStore
	RateCache
	ReimbursementStore
	Close() error
}
