package sqlite

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Amounts are stored as TEXT so no value ever passes through a float.
type transactionModel struct {
	Fingerprint      string              `gorm:"primaryKey;size:32"`
	TxnDate          string              `gorm:"index;size:10;not null"`
	Description      string              `gorm:"not null"`
	OriginalAmount   decimal.Decimal     `gorm:"type:text;not null"`
	OriginalCurrency string              `gorm:"size:3;not null"`
	AmountEUR        decimal.NullDecimal `gorm:"type:text"`
	AmountUSD        decimal.NullDecimal `gorm:"type:text"`
	ExchangeRate     decimal.NullDecimal `gorm:"type:text"`
	Subcategory      string              `gorm:"index;size:64"`
	Category         string              `gorm:"index;size:64"`
	BudgetType       string              `gorm:"size:32"`
	IsQuorum         bool                `gorm:"index;not null"`
	IsEUBill         bool                `gorm:"not null"`
	IsManual         bool                `gorm:"not null"`
	CardLast4        string              `gorm:"size:4"`
	Confidence       int
	Method           string `gorm:"size:16"`
	Source           string
	ImportedAt       time.Time
}

func (transactionModel) TableName() string { return "transactions" }

type merchantPatternModel struct {
	Pattern     string `gorm:"primaryKey;size:128"`
	Subcategory string `gorm:"size:64;not null"`
	Confidence  int    `gorm:"index;not null"`
	LastUsed    time.Time
}

func (merchantPatternModel) TableName() string { return "merchant_mapping" }

type categoryModel struct {
	Subcategory string `gorm:"primaryKey;size:64"`
	Category    string `gorm:"size:64;not null"`
	BudgetType  string `gorm:"size:32;not null"`
}

func (categoryModel) TableName() string { return "categories" }

type exchangeRateModel struct {
	RateDate string          `gorm:"primaryKey;size:10"`
	Rate     decimal.Decimal `gorm:"type:text;not null"`
}

func (exchangeRateModel) TableName() string { return "exchange_rates" }

type reimbursementModel struct {
	Year           int             `gorm:"primaryKey;autoIncrement:false"`
	Month          int             `gorm:"primaryKey;autoIncrement:false"`
	TotalQuorumUSD decimal.Decimal `gorm:"type:text;not null"`
	UpdatedAt      time.Time
}

func (reimbursementModel) TableName() string { return "reimbursements" }

func toTransactionModel(tx *domain.Transaction) *transactionModel {
	return &transactionModel{
		Fingerprint:      tx.Fingerprint,
		TxnDate:          tx.Date.String(),
		Description:      tx.Description,
		OriginalAmount:   tx.OriginalAmount,
		OriginalCurrency: string(tx.OriginalCurrency),
		AmountEUR:        tx.AmountEUR,
		AmountUSD:        tx.AmountUSD,
		ExchangeRate:     tx.ExchangeRate,
		Subcategory:      tx.Subcategory,
		Category:         tx.Category,
		BudgetType:       tx.BudgetType,
		IsQuorum:         tx.IsQuorum,
		IsEUBill:         tx.IsEUBill,
		IsManual:         tx.IsManual,
		CardLast4:        tx.CardLast4,
		Confidence:       tx.Confidence,
		Method:           string(tx.Method),
		Source:           tx.Source,
		ImportedAt:       tx.ImportedAt,
	}
}

func (m *transactionModel) toDomain() (*domain.Transaction, error) {
	d, err := civil.ParseDate(m.TxnDate)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		Fingerprint:      m.Fingerprint,
		Date:             d,
		Description:      m.Description,
		OriginalAmount:   m.OriginalAmount,
		OriginalCurrency: domain.Currency(m.OriginalCurrency),
		AmountEUR:        m.AmountEUR,
		AmountUSD:        m.AmountUSD,
		ExchangeRate:     m.ExchangeRate,
		Subcategory:      m.Subcategory,
		Category:         m.Category,
		BudgetType:       m.BudgetType,
		IsQuorum:         m.IsQuorum,
		IsEUBill:         m.IsEUBill,
		IsManual:         m.IsManual,
		CardLast4:        m.CardLast4,
		Confidence:       m.Confidence,
		Method:           domain.Method(m.Method),
		Source:           m.Source,
		ImportedAt:       m.ImportedAt,
	}, nil
}
