package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

func ListCategoryMappingsWithClient(ctx context.Context, client *bigquery.Client, t Tables) ([]domain.CategoryMapping, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT subcategory, category, budget_type FROM %s ORDER BY subcategory
	`, t.Categories()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategoryMappingsWithClient: %w", err)
	}

	var out []domain.CategoryMapping
	for {
		var row struct {
			Subcategory string `bigquery:"subcategory"`
			Category    string `bigquery:"category"`
			BudgetType  string `bigquery:"budget_type"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategoryMappingsWithClient: iterating: %w", err)
		}
		out = append(out, domain.CategoryMapping{Subcategory: row.Subcategory, Category: row.Category, BudgetType: row.BudgetType})
	}
	return out, nil
}

// SeedCategoriesWithClient inserts the mappings whose subcategory is not yet
// present, in a single MERGE over an array of structs.
func SeedCategoriesWithClient(ctx context.Context, client *bigquery.Client, t Tables, mappings []domain.CategoryMapping) (int, error) {
	if len(mappings) == 0 {
		return 0, nil
	}

	type seedRow struct {
		Subcategory string `bigquery:"subcategory"`
		Category    string `bigquery:"category"`
		BudgetType  string `bigquery:"budget_type"`
	}
	rows := make([]seedRow, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, seedRow{Subcategory: m.Subcategory, Category: m.Category, BudgetType: m.BudgetType})
	}

	q := client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT * FROM UNNEST(@rows)) S
		ON T.subcategory = S.subcategory
		WHEN NOT MATCHED THEN
		  INSERT (subcategory, category, budget_type) VALUES (S.subcategory, S.category, S.budget_type)
	`, t.Categories()))
	q.Parameters = []bigquery.QueryParameter{{Name: "rows", Value: rows}}

	affected, err := runDML(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("SeedCategoriesWithClient: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Int64("added", affected).Int("requested", len(mappings)).Msg("seeded categories")
	return int(affected), nil
}
