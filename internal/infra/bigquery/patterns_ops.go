package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

type merchantPatternRow struct {
	Pattern     string    `bigquery:"pattern"`
	Subcategory string    `bigquery:"subcategory"`
	Confidence  int64     `bigquery:"confidence"`
	LastUsed    time.Time `bigquery:"last_used"`
}

// ListMerchantPatternsWithClient returns patterns most-confident first.
func ListMerchantPatternsWithClient(ctx context.Context, client *bigquery.Client, t Tables) ([]domain.MerchantPattern, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT pattern, subcategory, confidence, last_used
		FROM %s
		ORDER BY confidence DESC, pattern
	`, t.Patterns()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListMerchantPatternsWithClient: %w", err)
	}

	var out []domain.MerchantPattern
	for {
		var row merchantPatternRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListMerchantPatternsWithClient: iterating: %w", err)
		}
		out = append(out, domain.MerchantPattern{
			Pattern:     row.Pattern,
			Subcategory: row.Subcategory,
			Confidence:  int(row.Confidence),
			LastUsed:    row.LastUsed,
		})
	}
	return out, nil
}

func CountMerchantPatternsWithClient(ctx context.Context, client *bigquery.Client, t Tables) (int, error) {
	q := client.Query(fmt.Sprintf("SELECT COUNT(*) AS n FROM %s", t.Patterns()))
	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountMerchantPatternsWithClient: %w", err)
	}
	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil {
		return 0, fmt.Errorf("CountMerchantPatternsWithClient: reading count: %w", err)
	}
	return int(row.N), nil
}

// SaveMerchantPatternWithClient upserts a pattern by its token.
func SaveMerchantPatternWithClient(ctx context.Context, client *bigquery.Client, t Tables, p domain.MerchantPattern) error {
	q := client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @pattern AS pattern, @subcategory AS subcategory,
		              @confidence AS confidence, @last_used AS last_used) S
		ON T.pattern = S.pattern
		WHEN MATCHED THEN
		  UPDATE SET subcategory = S.subcategory, confidence = S.confidence, last_used = S.last_used
		WHEN NOT MATCHED THEN
		  INSERT (pattern, subcategory, confidence, last_used)
		  VALUES (S.pattern, S.subcategory, S.confidence, S.last_used)
	`, t.Patterns()))

	lastUsed := p.LastUsed
	if lastUsed.IsZero() {
		lastUsed = time.Now().UTC()
	}
	q.Parameters = []bigquery.QueryParameter{
		{Name: "pattern", Value: p.Pattern},
		{Name: "subcategory", Value: p.Subcategory},
		{Name: "confidence", Value: p.Confidence},
		{Name: "last_used", Value: lastUsed},
	}

	if _, err := runDML(ctx, q); err != nil {
		return fmt.Errorf("SaveMerchantPatternWithClient: %s: %w", p.Pattern, err)
	}
	return nil
}
