package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ExchangeRate is one cached EUR->USD daily rate.
type ExchangeRate struct {
	Date civil.Date      `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// QuorumTotal is the reimbursable Quorum spend for one calendar month.
type QuorumTotal struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	TotalUSD decimal.Decimal `json:"total_usd"`
}
