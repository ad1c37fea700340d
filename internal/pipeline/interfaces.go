package pipeline

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/reconcile"
)

// Categorizer assigns and learns categories.
type Categorizer interface {
	Categorize(description string, isQuorum bool) categorizer.Result
	Lookup(subcategory string) (domain.CategoryMapping, bool)
	Learn(ctx context.Context, description, subcategory string) error
}

// RateResolver resolves EUR->USD rates for a set of days without prompting.
type RateResolver interface {
	FetchBulk(ctx context.Context, days []civil.Date) map[civil.Date]decimal.Decimal
}

// Reconciler applies the currency regime policy to one amount.
type Reconciler interface {
	Reconcile(in reconcile.Input) (reconcile.Amounts, error)
}

// Store is the part of the ledger the importer reads and writes.
type Store interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	RecomputeQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error)
}
