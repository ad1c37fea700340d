package rates

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mocks/mock_rates.go -package=mock_rates -source=interfaces.go

// Source fetches the EUR->USD rate published for an exact date.
type Source interface {
	FetchRate(ctx context.Context, day civil.Date) (decimal.Decimal, error)
}

// Cache persists resolved rates. Writes for a date always carry the same value.
type Cache interface {
	LoadExchangeRates(ctx context.Context) (map[civil.Date]decimal.Decimal, error)
	SaveExchangeRate(ctx context.Context, day civil.Date, rate decimal.Decimal) error
}

// ManualEntry asks a human for a rate. ok is false when the user skips.
type ManualEntry interface {
	PromptRate(ctx context.Context, day civil.Date) (rate decimal.Decimal, ok bool, err error)
}
