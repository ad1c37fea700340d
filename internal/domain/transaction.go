package domain

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code of an amount stored in the ledger.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// Regime selects the currency conversion policy applied to a row.
type Regime string

const (
	RegimeQuorum  Regime = "quorum"
	RegimeEUBill  Regime = "eu_bill"
	RegimeRegular Regime = "regular"
)

// Method records how a row received its category.
type Method string

const (
	MethodQuorum  Method = "quorum"
	MethodPattern Method = "pattern"
	MethodFuzzy   Method = "fuzzy"
	MethodNone    Method = "none"
	MethodHistory Method = "history"
	MethodManual  Method = "manual"
)

// Transaction is one committed ledger row. Fingerprint is its primary key.
type Transaction struct {
	Fingerprint      string
	Date             civil.Date
	Description      string
	OriginalAmount   decimal.Decimal
	OriginalCurrency Currency
	AmountEUR        decimal.NullDecimal
	AmountUSD        decimal.NullDecimal
	ExchangeRate     decimal.NullDecimal

	Subcategory string
	Category    string
	BudgetType  string

	IsQuorum  bool
	IsEUBill  bool
	IsManual  bool
	CardLast4 string

	Confidence int
	Method     Method
	Source     string
	ImportedAt time.Time
}

// Regime derives the conversion regime from the row flags. Quorum wins over EU-bill.
func (t *Transaction) Regime() Regime {
	switch {
	case t.IsQuorum:
		return RegimeQuorum
	case t.IsEUBill:
		return RegimeEUBill
	default:
		return RegimeRegular
	}
}

// NeedsReview reports whether the row should be surfaced for manual categorization.
func (t *Transaction) NeedsReview() bool {
	return t.Confidence == 0 || t.Method == MethodNone
}

var ErrInvalidTransaction = errors.New("invalid transaction")

// Validate enforces the dual-currency null invariant for the row's regime.
func (t *Transaction) Validate() error {
	if t.Fingerprint == "" {
		return fmt.Errorf("%w: empty fingerprint", ErrInvalidTransaction)
	}
	switch t.Regime() {
	case RegimeQuorum:
		if t.AmountEUR.Valid || !t.AmountUSD.Valid {
			return fmt.Errorf("%w: quorum row %s must carry only amount_usd", ErrInvalidTransaction, t.Fingerprint)
		}
	case RegimeEUBill:
		if t.AmountUSD.Valid || !t.AmountEUR.Valid {
			return fmt.Errorf("%w: eu-bill row %s must carry only amount_eur", ErrInvalidTransaction, t.Fingerprint)
		}
	default:
		if !t.AmountUSD.Valid || !t.AmountEUR.Valid || !t.ExchangeRate.Valid {
			return fmt.Errorf("%w: regular row %s needs both amounts and a rate", ErrInvalidTransaction, t.Fingerprint)
		}
	}
	return nil
}
