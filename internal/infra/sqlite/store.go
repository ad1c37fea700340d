package sqlite

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

const fingerprintChunk = 500

// Store implements ledger.Store on SQLite.
type Store struct {
	db *gorm.DB
}

var _ ledger.Store = (*Store)(nil)

// NewWithDB wraps an already migrated connection.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertTransaction relies on the fingerprint primary key: a conflicting row
// is left untouched and reported as ledger.ErrDuplicate.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(toTransactionModel(tx))
	if res.Error != nil {
		return fmt.Errorf("InsertTransaction: %s: %w", tx.Fingerprint, res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrDuplicate
	}
	return nil
}

func (s *Store) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for start := 0; start < len(fingerprints); start += fingerprintChunk {
		end := min(start+fingerprintChunk, len(fingerprints))

		var found []string
		err := s.db.WithContext(ctx).
			Model(&transactionModel{}).
			Where("fingerprint IN ?", fingerprints[start:end]).
			Pluck("fingerprint", &found).Error
		if err != nil {
			return nil, fmt.Errorf("ExistingFingerprints: %w", err)
		}
		for _, fp := range found {
			out[fp] = true
		}
	}
	return out, nil
}

func (s *Store) QueryTransactions(ctx context.Context, f ledger.Filter) ([]*domain.Transaction, error) {
	q := s.db.WithContext(ctx).Model(&transactionModel{})
	if f.From.IsValid() {
		q = q.Where("txn_date >= ?", f.From.String())
	}
	if f.To.IsValid() {
		q = q.Where("txn_date <= ?", f.To.String())
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.IsQuorum != nil {
		q = q.Where("is_quorum = ?", *f.IsQuorum)
	}
	if f.IsManual != nil {
		q = q.Where("is_manual = ?", *f.IsManual)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []transactionModel
	if err := q.Order("txn_date ASC").Order("imported_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("QueryTransactions: %w", err)
	}

	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("QueryTransactions: row %s: %w", rows[i].Fingerprint, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) MineDescriptionPatterns(ctx context.Context, minCount int) ([]ledger.HistoricalPattern, error) {
	var rows []struct {
		Description string
		Subcategory string
		Count       int
	}
	err := s.db.WithContext(ctx).
		Model(&transactionModel{}).
		Select("description, subcategory, COUNT(*) AS count").
		Where("is_quorum = ? AND subcategory <> ''", false).
		Group("description, subcategory").
		Having("COUNT(*) >= ?", minCount).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("MineDescriptionPatterns: %w", err)
	}

	out := make([]ledger.HistoricalPattern, 0, len(rows))
	for _, r := range rows {
		out = append(out, ledger.HistoricalPattern{Description: r.Description, Subcategory: r.Subcategory, Count: r.Count})
	}
	ledger.SortHistoricalPatterns(out)
	return out, nil
}

func (s *Store) ListMerchantPatterns(ctx context.Context) ([]domain.MerchantPattern, error) {
	var rows []merchantPatternModel
	if err := s.db.WithContext(ctx).Order("confidence DESC").Order("pattern ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListMerchantPatterns: %w", err)
	}
	out := make([]domain.MerchantPattern, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MerchantPattern{
			Pattern:     r.Pattern,
			Subcategory: r.Subcategory,
			Confidence:  r.Confidence,
			LastUsed:    r.LastUsed,
		})
	}
	return out, nil
}

func (s *Store) CountMerchantPatterns(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&merchantPatternModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("CountMerchantPatterns: %w", err)
	}
	return int(n), nil
}

func (s *Store) SaveMerchantPattern(ctx context.Context, p domain.MerchantPattern) error {
	row := merchantPatternModel{
		Pattern:     p.Pattern,
		Subcategory: p.Subcategory,
		Confidence:  p.Confidence,
		LastUsed:    p.LastUsed,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("SaveMerchantPattern: %s: %w", p.Pattern, err)
	}
	return nil
}

func (s *Store) ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	var rows []categoryModel
	if err := s.db.WithContext(ctx).Order("subcategory").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListCategoryMappings: %w", err)
	}
	out := make([]domain.CategoryMapping, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CategoryMapping{Subcategory: r.Subcategory, Category: r.Category, BudgetType: r.BudgetType})
	}
	return out, nil
}

func (s *Store) SeedCategories(ctx context.Context, mappings []domain.CategoryMapping) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mappings {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&categoryModel{
				Subcategory: m.Subcategory,
				Category:    m.Category,
				BudgetType:  m.BudgetType,
			})
			if res.Error != nil {
				return res.Error
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("SeedCategories: %w", err)
	}
	return added, nil
}

func (s *Store) LoadExchangeRates(ctx context.Context) (map[civil.Date]decimal.Decimal, error) {
	var rows []exchangeRateModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("LoadExchangeRates: %w", err)
	}
	out := make(map[civil.Date]decimal.Decimal, len(rows))
	for _, r := range rows {
		d, err := civil.ParseDate(r.RateDate)
		if err != nil {
			return nil, fmt.Errorf("LoadExchangeRates: %q: %w", r.RateDate, err)
		}
		out[d] = r.Rate
	}
	return out, nil
}

func (s *Store) SaveExchangeRate(ctx context.Context, day civil.Date, rate decimal.Decimal) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&exchangeRateModel{RateDate: day.String(), Rate: rate}).Error
	if err != nil {
		return fmt.Errorf("SaveExchangeRate: %s: %w", day, err)
	}
	return nil
}

// RecomputeQuorumTotals sums in Go rather than SQL: SQLite would coerce the
// TEXT amounts to REAL.
func (s *Store) RecomputeQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	quorum := true
	txs, err := s.QueryTransactions(ctx, ledger.Filter{IsQuorum: &quorum})
	if err != nil {
		return nil, fmt.Errorf("RecomputeQuorumTotals: %w", err)
	}
	totals := ledger.AggregateQuorumTotals(txs)

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range totals {
			row := reimbursementModel{Year: t.Year, Month: t.Month, TotalQuorumUSD: t.TotalUSD, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("RecomputeQuorumTotals: upsert: %w", err)
	}
	return totals, nil
}

func (s *Store) ListQuorumTotals(ctx context.Context) ([]domain.QuorumTotal, error) {
	var rows []reimbursementModel
	if err := s.db.WithContext(ctx).Order("year").Order("month").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListQuorumTotals: %w", err)
	}
	out := make([]domain.QuorumTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuorumTotal{Year: r.Year, Month: r.Month, TotalUSD: r.TotalQuorumUSD})
	}
	return out, nil
}
