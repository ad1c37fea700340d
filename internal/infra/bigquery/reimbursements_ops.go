package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// RecomputeQuorumTotalsWithClient rebuilds the reimbursements table from the
// Quorum transactions in one MERGE, then reads the result back.
func RecomputeQuorumTotalsWithClient(ctx context.Context, client *bigquery.Client, t Tables) ([]domain.QuorumTotal, error) {
	q := client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (
		  SELECT EXTRACT(YEAR FROM txn_date) AS year,
		         EXTRACT(MONTH FROM txn_date) AS month,
		         SUM(amount_usd) AS total_quorum_usd
		  FROM %s
		  WHERE is_quorum = TRUE AND amount_usd IS NOT NULL
		  GROUP BY year, month
		) S
		ON T.year = S.year AND T.month = S.month
		WHEN MATCHED THEN
		  UPDATE SET total_quorum_usd = S.total_quorum_usd, updated_at = CURRENT_TIMESTAMP()
		WHEN NOT MATCHED THEN
		  INSERT (year, month, total_quorum_usd, updated_at)
		  VALUES (S.year, S.month, S.total_quorum_usd, CURRENT_TIMESTAMP())
	`, t.Reimbursements(), t.Transactions()))

	if _, err := runDML(ctx, q); err != nil {
		return nil, fmt.Errorf("RecomputeQuorumTotalsWithClient: %w", err)
	}
	return ListQuorumTotalsWithClient(ctx, client, t)
}

func ListQuorumTotalsWithClient(ctx context.Context, client *bigquery.Client, t Tables) ([]domain.QuorumTotal, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT year, month, CAST(total_quorum_usd AS STRING) AS total
		FROM %s ORDER BY year, month
	`, t.Reimbursements()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListQuorumTotalsWithClient: %w", err)
	}

	var out []domain.QuorumTotal
	for {
		var row struct {
			Year  int64  `bigquery:"year"`
			Month int64  `bigquery:"month"`
			Total string `bigquery:"total"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListQuorumTotalsWithClient: iterating: %w", err)
		}
		total, err := decimal.NewFromString(row.Total)
		if err != nil {
			return nil, fmt.Errorf("ListQuorumTotalsWithClient: %d-%02d: %w", row.Year, row.Month, err)
		}
		out = append(out, domain.QuorumTotal{Year: int(row.Year), Month: int(row.Month), TotalUSD: total})
	}
	return out, nil
}
