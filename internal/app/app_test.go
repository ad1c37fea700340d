package app

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/ledger/memory"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

type sourceFunc func(ctx context.Context, day civil.Date) (decimal.Decimal, error)

func (f sourceFunc) FetchRate(ctx context.Context, day civil.Date) (decimal.Decimal, error) {
	return f(ctx, day)
}

func testConfig() *config.Config {
	return &config.Config{
		Store:  config.StoreConfig{Backend: "memory"},
		Rates:  config.RatesConfig{ProbeDays: 3, Concurrency: 2, Timeout: time.Second},
		Import: config.ImportConfig{QuorumCards: []string{"7575"}, EUBillMarkers: []string{"RENT"}},
		Categorizer: config.CategorizerConfig{
			FuzzyRules:        []config.FuzzyRule{{Keyword: "REWE", Subcategory: "Supermarket"}},
			BootstrapMinCount: 2,
		},
	}
}

func TestBuild_ImportsThroughWiredComponents(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.SeedCategories(ctx, domain.DefaultCategories())
	require.NoError(t, err)

	fetched := 0
	a, err := Build(ctx, testConfig(), store, Options{
		Source: sourceFunc(func(context.Context, civil.Date) (decimal.Decimal, error) {
			fetched++
			return decimal.RequireFromString("1.08"), nil
		}),
		Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	defer a.Close()

	csv := "Transaction Date,Description,Debit,Credit,Card No.\n" +
		"03.05.2024,REWE Frank Glawe,42.10,,...1234\n" +
		"04.05.2024,UBER TRIP,15.00,,...7575\n"
	_, report, err := a.Importer.Run(ctx,
		pipeline.BytesSource("may.csv", statement.KindStatement, []byte(csv)), pipeline.AutoConfirm)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, fetched)

	rewe, err := a.Store.QueryTransactions(ctx, ledger.Filter{Subcategory: "Supermarket"})
	require.NoError(t, err)
	require.Len(t, rewe, 1)
	assert.Equal(t, "38.98", rewe[0].AmountEUR.Decimal.StringFixed(2))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), rewe[0].ImportedAt)

	totals, err := a.Store.ListQuorumTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "15", totals[0].TotalUSD.String())
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "postgres"
	_, err := Open(context.Background(), cfg, Options{})
	assert.Error(t, err)
}

func TestFuzzyRules(t *testing.T) {
	got := FuzzyRules(config.DefaultFuzzyRules())
	require.Len(t, got, len(config.DefaultFuzzyRules()))
	assert.Equal(t, "rewe", got[0].Keyword)
	assert.Equal(t, "Supermarket", got[0].Subcategory)
}
