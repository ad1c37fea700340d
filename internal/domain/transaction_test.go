package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestTransaction_Regime(t *testing.T) {
	assert.Equal(t, RegimeQuorum, (&Transaction{IsQuorum: true, IsEUBill: true}).Regime())
	assert.Equal(t, RegimeEUBill, (&Transaction{IsEUBill: true}).Regime())
	assert.Equal(t, RegimeRegular, (&Transaction{}).Regime())
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name: "regular with both amounts",
			tx:   Transaction{Fingerprint: "a", AmountEUR: amount("38.98"), AmountUSD: amount("42.10"), ExchangeRate: amount("1.08")},
		},
		{
			name:    "regular missing eur",
			tx:      Transaction{Fingerprint: "a", AmountUSD: amount("42.10"), ExchangeRate: amount("1.08")},
			wantErr: true,
		},
		{
			name: "quorum usd only",
			tx:   Transaction{Fingerprint: "a", IsQuorum: true, AmountUSD: amount("15.00")},
		},
		{
			name:    "quorum with eur",
			tx:      Transaction{Fingerprint: "a", IsQuorum: true, AmountUSD: amount("15.00"), AmountEUR: amount("14")},
			wantErr: true,
		},
		{
			name: "eu bill eur only",
			tx:   Transaction{Fingerprint: "a", IsEUBill: true, AmountEUR: amount("930")},
		},
		{
			name:    "eu bill with usd",
			tx:      Transaction{Fingerprint: "a", IsEUBill: true, AmountEUR: amount("930"), AmountUSD: amount("1000")},
			wantErr: true,
		},
		{
			name:    "missing fingerprint",
			tx:      Transaction{IsQuorum: true, AmountUSD: amount("1")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransaction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultCategories_ContainsDefaults(t *testing.T) {
	subs := map[string]CategoryMapping{}
	for _, c := range DefaultCategories() {
		subs[c.Subcategory] = c
	}
	assert.Equal(t, QuorumBudgetType, subs[QuorumSubcategory].BudgetType)
	assert.Equal(t, UnexpectedCategory, subs[UncategorizedSubcategory].Category)
	assert.Equal(t, "Groceries & Living", subs["Supermarket"].Category)
}
