// Package reconcile converts a single statement amount into the ledger's
// dual-currency representation.
//
//	regime   original          amount_usd        amount_eur
//	Quorum   USD, as-is        amount            null
//	EU-bill  EUR, as-is        null              amount
//	Regular  EUR, usd/rate     amount (USD)      usd/rate
//
// Regular rows read from a EUR-denominated ledger convert the other way:
// amount_eur is the amount and amount_usd is eur*rate.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

var ErrNeedsRate = errors.New("exchange rate required")

// Input is one amount with its regime and, for regular rows, the day's rate.
type Input struct {
	Regime         domain.Regime
	Amount         decimal.Decimal
	SourceCurrency domain.Currency
	Rate           decimal.NullDecimal
}

// Amounts are the currency fields of a committed transaction.
type Amounts struct {
	OriginalAmount   decimal.Decimal
	OriginalCurrency domain.Currency
	AmountEUR        decimal.NullDecimal
	AmountUSD        decimal.NullDecimal
	ExchangeRate     decimal.NullDecimal
}

// ApplyTo copies the amounts onto tx.
func (a Amounts) ApplyTo(tx *domain.Transaction) {
	tx.OriginalAmount = a.OriginalAmount
	tx.OriginalCurrency = a.OriginalCurrency
	tx.AmountEUR = a.AmountEUR
	tx.AmountUSD = a.AmountUSD
	tx.ExchangeRate = a.ExchangeRate
}

// Engine applies the three-regime conversion policy. It is stateless.
type Engine struct {
	places int32
}

func NewEngine() *Engine {
	return &Engine{places: 2}
}

// Reconcile returns ErrNeedsRate for a regular row without a usable rate.
func (e *Engine) Reconcile(in Input) (Amounts, error) {
	switch in.Regime {
	case domain.RegimeQuorum:
		return Amounts{
			OriginalAmount:   in.Amount,
			OriginalCurrency: domain.USD,
			AmountUSD:        decimal.NewNullDecimal(in.Amount),
		}, nil

	case domain.RegimeEUBill:
		return Amounts{
			OriginalAmount:   in.Amount,
			OriginalCurrency: domain.EUR,
			AmountEUR:        decimal.NewNullDecimal(in.Amount),
		}, nil

	case domain.RegimeRegular:
		if !in.Rate.Valid || !in.Rate.Decimal.IsPositive() {
			return Amounts{}, ErrNeedsRate
		}
		rate := in.Rate.Decimal

		var eur, usd decimal.Decimal
		switch in.SourceCurrency {
		case domain.EUR:
			eur = in.Amount
			usd = in.Amount.Mul(rate).Round(e.places)
		case domain.USD, "":
			usd = in.Amount
			eur = in.Amount.Div(rate).Round(e.places)
		default:
			return Amounts{}, fmt.Errorf("Reconcile: unsupported source currency %q", in.SourceCurrency)
		}

		return Amounts{
			OriginalAmount:   eur,
			OriginalCurrency: domain.EUR,
			AmountEUR:        decimal.NewNullDecimal(eur),
			AmountUSD:        decimal.NewNullDecimal(usd),
			ExchangeRate:     decimal.NewNullDecimal(rate),
		}, nil

	default:
		return Amounts{}, fmt.Errorf("Reconcile: unknown regime %q", in.Regime)
	}
}
