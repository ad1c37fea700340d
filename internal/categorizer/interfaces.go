package categorizer

import (
	"context"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

//go:generate mockgen -destination=mocks/mock_categorizer.go -package=mock_categorizer -source=interfaces.go

// Store is the persistence the categorizer needs: its own pattern table, the
// static category map and read access to ledger history for bootstrapping.
type Store interface {
	ListMerchantPatterns(ctx context.Context) ([]domain.MerchantPattern, error)
	CountMerchantPatterns(ctx context.Context) (int, error)
	SaveMerchantPattern(ctx context.Context, p domain.MerchantPattern) error
	ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error)
	MineDescriptionPatterns(ctx context.Context, minCount int) ([]ledger.HistoricalPattern, error)
}

// Suggester proposes a subcategory for a description the matcher could not place.
type Suggester interface {
	Suggest(ctx context.Context, description string, candidates []string) (string, error)
}
