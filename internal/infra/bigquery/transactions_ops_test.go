package bigquery

import (
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

func TestBuildTransactionFilter(t *testing.T) {
	t.Run("empty filter", func(t *testing.T) {
		where, params := buildTransactionFilter(ledger.Filter{})
		assert.Empty(t, where)
		assert.Empty(t, params)
	})

	t.Run("all fields", func(t *testing.T) {
		quorum, manual := true, false
		where, params := buildTransactionFilter(ledger.Filter{
			From:        civil.Date{Year: 2024, Month: 1, Day: 1},
			To:          civil.Date{Year: 2024, Month: 1, Day: 31},
			Category:    "Needs",
			Subcategory: "Rent",
			IsQuorum:    &quorum,
			IsManual:    &manual,
		})
		assert.Equal(t, "WHERE txn_date >= @from AND txn_date <= @to AND category = @category AND subcategory = @subcategory AND is_quorum = @is_quorum AND is_manual = @is_manual", where)
		require.Len(t, params, 6)
		assert.Equal(t, true, params[4].Value)
	})
}

func TestTransactionRow_ToDomain(t *testing.T) {
	row := transactionRow{
		Fingerprint:      "abc",
		TxnDate:          civil.Date{Year: 2024, Month: 5, Day: 3},
		Description:      "REWE Frank Glawe",
		OriginalAmount:   "38.98",
		OriginalCurrency: "EUR",
		AmountEUR:        bigquery.NullString{StringVal: "38.98", Valid: true},
		AmountUSD:        bigquery.NullString{StringVal: "42.10", Valid: true},
		ExchangeRate:     bigquery.NullString{StringVal: "1.08", Valid: true},
		Method:           "pattern",
		Confidence:       90,
	}

	tx, err := row.toDomain()
	require.NoError(t, err)
	assert.True(t, tx.OriginalAmount.Equal(decimal.RequireFromString("38.98")))
	assert.Equal(t, domain.EUR, tx.OriginalCurrency)
	assert.True(t, tx.AmountUSD.Valid)
	assert.Equal(t, "42.1", tx.AmountUSD.Decimal.String())
	assert.Equal(t, domain.MethodPattern, tx.Method)
	assert.Equal(t, 90, tx.Confidence)
}

func TestTransactionRow_ToDomainNulls(t *testing.T) {
	row := transactionRow{Fingerprint: "q", OriginalAmount: "15.00", OriginalCurrency: "USD", IsQuorum: true,
		AmountUSD: bigquery.NullString{StringVal: "15.00", Valid: true}}

	tx, err := row.toDomain()
	require.NoError(t, err)
	assert.False(t, tx.AmountEUR.Valid)
	assert.False(t, tx.ExchangeRate.Valid)
	assert.NoError(t, tx.Validate())
}

func TestTransactionRow_ToDomainBadNumeric(t *testing.T) {
	row := transactionRow{Fingerprint: "x", OriginalAmount: "not-a-number"}
	_, err := row.toDomain()
	assert.Error(t, err)
}

func TestNumericParam(t *testing.T) {
	assert.Equal(t, "", numericParam(decimal.NullDecimal{}))
	assert.Equal(t, "38.98", numericParam(decimal.NewNullDecimal(decimal.RequireFromString("38.98"))))
}
