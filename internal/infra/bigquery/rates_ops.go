package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

func LoadExchangeRatesWithClient(ctx context.Context, client *bigquery.Client, t Tables) (map[civil.Date]decimal.Decimal, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT rate_date, CAST(rate AS STRING) AS rate FROM %s
	`, t.ExchangeRates()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadExchangeRatesWithClient: %w", err)
	}

	out := make(map[civil.Date]decimal.Decimal)
	for {
		var row struct {
			RateDate civil.Date `bigquery:"rate_date"`
			Rate     string     `bigquery:"rate"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadExchangeRatesWithClient: iterating: %w", err)
		}
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil {
			return nil, fmt.Errorf("LoadExchangeRatesWithClient: %s: %w", row.RateDate, err)
		}
		out[row.RateDate] = rate
	}
	return out, nil
}

func SaveExchangeRateWithClient(ctx context.Context, client *bigquery.Client, t Tables, day civil.Date, rate decimal.Decimal) error {
	q := client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @rate_date AS rate_date, CAST(@rate AS NUMERIC) AS rate) S
		ON T.rate_date = S.rate_date
		WHEN MATCHED THEN UPDATE SET rate = S.rate, fetched_at = @fetched_at
		WHEN NOT MATCHED THEN
		  INSERT (rate_date, rate, fetched_at) VALUES (S.rate_date, S.rate, @fetched_at)
	`, t.ExchangeRates()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "rate_date", Value: day},
		{Name: "rate", Value: rate.String()},
		{Name: "fetched_at", Value: time.Now().UTC()},
	}

	if _, err := runDML(ctx, q); err != nil {
		return fmt.Errorf("SaveExchangeRateWithClient: %s: %w", day, err)
	}
	return nil
}
