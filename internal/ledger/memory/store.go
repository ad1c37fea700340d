// Package memory is a process-local ledger backend used by tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	order        []string
	patterns     map[string]domain.MerchantPattern
	categories   map[string]domain.CategoryMapping
	rates        map[civil.Date]decimal.Decimal
	totals       []domain.QuorumTotal
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]*domain.Transaction),
		patterns:     make(map[string]domain.MerchantPattern),
		categories:   make(map[string]domain.CategoryMapping),
		rates:        make(map[civil.Date]decimal.Decimal),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.Fingerprint]; ok {
		return ledger.ErrDuplicate
	}
	cp := *tx
	s.transactions[tx.Fingerprint] = &cp
	s.order = append(s.order, tx.Fingerprint)
	return nil
}

func (s *Store) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for _, fp := range fingerprints {
		if _, ok := s.transactions[fp]; ok {
			out[fp] = true
		}
	}
	return out, nil
}

// QueryTransactions returns matches ordered by date, then insertion order.
func (s *Store) QueryTransactions(ctx context.Context, f ledger.Filter) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Transaction
	for _, fp := range s.order {
		tx := s.transactions[fp]
		if f.Match(tx) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) MineDescriptionPatterns(ctx context.Context, minCount int) ([]ledger.HistoricalPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.MinePatterns(s.all(), minCount), nil
}

func (s *Store) ListMerchantPatterns(ctx context.Context) ([]domain.MerchantPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MerchantPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	ledger.SortPatterns(out)
	return out, nil
}

func (s *Store) CountMerchantPatterns(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns), nil
}

func (s *Store) SaveMerchantPattern(ctx context.Context, p domain.MerchantPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[p.Pattern] = p
	return nil
}

func (s *Store) ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CategoryMapping, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subcategory < out[j].Subcategory })
	return out, nil
}

func (s *Store) SeedCategories(ctx context.Context, mappings []domain.CategoryMapping) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, m := range mappings {
		if _, ok := s.categories[m.Subcategory]; ok {
			continue
		}
		s.categories[m.Subcategory] = m
		added++
	}
	return added, nil
}

func (s *Store) LoadExchangeRates(ctx context.Context) (map[civil.Date]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[civil.Date]decimal.Decimal, len(s.rates))
	for d, r := range s.rates {
		out[d] = r
	}
	return out, nil
}

func (s *Store) SaveExchangeRate(ctx context.Context, day civil.Date, rate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[day] = rate
	return nil
}

func (s *Store) RecomputeQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = ledger.AggregateQuorumTotals(s.all())
	return append([]domain.QuorumTotal(nil), s.totals...), nil
}

func (s *Store) ListQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuorumTotal(nil), s.totals...), nil
}

func (s *Store) all() []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(s.order))
	for _, fp := range s.order {
		out = append(out, s.transactions[fp])
	}
	return out
}
