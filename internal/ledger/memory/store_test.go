package memory

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

func TestStore_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx := &domain.Transaction{Fingerprint: "fp1", Date: civil.Date{Year: 2024, Month: 5, Day: 3}}
	require.NoError(t, s.InsertTransaction(ctx, tx))
	assert.ErrorIs(t, s.InsertTransaction(ctx, tx), ledger.ErrDuplicate)

	seen, err := s.ExistingFingerprints(ctx, []string{"fp1", "fp2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"fp1": true}, seen)
}

func TestStore_QueryTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	quorum := true

	for i, q := range []bool{false, true, true} {
		require.NoError(t, s.InsertTransaction(ctx, &domain.Transaction{
			Fingerprint: string(rune('a' + i)),
			Date:        civil.Date{Year: 2024, Month: 5, Day: 3 - i},
			IsQuorum:    q,
		}))
	}

	got, err := s.QueryTransactions(ctx, ledger.Filter{IsQuorum: &quorum})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Fingerprint)

	got, err = s.QueryTransactions(ctx, ledger.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_PatternsAndCategories(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.CountMerchantPatterns(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.SaveMerchantPattern(ctx, domain.MerchantPattern{Pattern: "REWE", Subcategory: "Supermarket", Confidence: 1}))
	require.NoError(t, s.SaveMerchantPattern(ctx, domain.MerchantPattern{Pattern: "DM-DROGERIE", Subcategory: "Household expenses", Confidence: 4}))
	require.NoError(t, s.SaveMerchantPattern(ctx, domain.MerchantPattern{Pattern: "REWE", Subcategory: "Supermarket", Confidence: 2}))

	ps, err := s.ListMerchantPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "DM-DROGERIE", ps[0].Pattern)
	assert.Equal(t, 2, ps[1].Confidence)

	added, err := s.SeedCategories(ctx, domain.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultCategories()), added)

	added, err = s.SeedCategories(ctx, domain.DefaultCategories())
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestStore_RatesAndTotals(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := civil.Date{Year: 2024, Month: 5, Day: 3}

	require.NoError(t, s.SaveExchangeRate(ctx, day, decimal.RequireFromString("1.08")))
	require.NoError(t, s.SaveExchangeRate(ctx, day, decimal.RequireFromString("1.08")))
	rates, err := s.LoadExchangeRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, 1)

	require.NoError(t, s.InsertTransaction(ctx, &domain.Transaction{
		Fingerprint: "q", Date: day, IsQuorum: true,
		AmountUSD: decimal.NewNullDecimal(decimal.RequireFromString("15.00")),
	}))
	totals, err := s.RecomputeQuorumTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].TotalUSD.Equal(decimal.NewFromInt(15)))

	listed, err := s.ListQuorumTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, totals, listed)
}
