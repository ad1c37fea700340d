package ledger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

func quorumTx(y int, m int, usd string) *domain.Transaction {
	return &domain.Transaction{
		Date:      civil.Date{Year: y, Month: time.Month(m), Day: 1},
		IsQuorum:  true,
		AmountUSD: decimal.NewNullDecimal(decimal.RequireFromString(usd)),
	}
}

func TestAggregateQuorumTotals(t *testing.T) {
	txs := []*domain.Transaction{
		quorumTx(2024, 5, "15.00"),
		quorumTx(2024, 4, "10.00"),
		quorumTx(2024, 5, "5.50"),
		{Date: civil.Date{Year: 2024, Month: 5, Day: 2}, AmountUSD: decimal.NewNullDecimal(decimal.NewFromInt(99))},
	}

	got := AggregateQuorumTotals(txs)

	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Month)
	assert.True(t, got[0].TotalUSD.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5, got[1].Month)
	assert.True(t, got[1].TotalUSD.Equal(decimal.RequireFromString("20.50")))
}

func TestMinePatterns(t *testing.T) {
	tx := func(desc, sub string, quorum bool) *domain.Transaction {
		return &domain.Transaction{Description: desc, Subcategory: sub, IsQuorum: quorum}
	}
	txs := []*domain.Transaction{
		tx("REWE SAGT DANKE", "Supermarket", false),
		tx("REWE SAGT DANKE", "Supermarket", false),
		tx("REWE SAGT DANKE", "Supermarket", false),
		tx("ROSSMANN 123", "Household expenses", false),
		tx("ROSSMANN 123", "Household expenses", false),
		tx("NETFLIX", "Monthly subscriptions", false),
		tx("TEAM LUNCH", "Quorum", true),
		tx("TEAM LUNCH", "Quorum", true),
	}

	got := MinePatterns(txs, 2)

	require.Len(t, got, 2)
	assert.Equal(t, HistoricalPattern{Description: "REWE SAGT DANKE", Subcategory: "Supermarket", Count: 3}, got[0])
	assert.Equal(t, "ROSSMANN 123", got[1].Description)
}

func TestSortPatterns(t *testing.T) {
	ps := []domain.MerchantPattern{
		{Pattern: "B", Confidence: 2},
		{Pattern: "A", Confidence: 2},
		{Pattern: "C", Confidence: 5},
	}
	SortPatterns(ps)
	assert.Equal(t, []string{"C", "A", "B"}, []string{ps[0].Pattern, ps[1].Pattern, ps[2].Pattern})
}
