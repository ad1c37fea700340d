package bigquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

// transactionRow is the read shape of the transactions table. Numerics are
// cast to STRING in SQL so decimals survive the round trip unchanged.
type transactionRow struct {
	Fingerprint      string              `bigquery:"fingerprint"`
	TxnDate          civil.Date          `bigquery:"txn_date"`
	Description      string              `bigquery:"description"`
	OriginalAmount   string              `bigquery:"original_amount"`
	OriginalCurrency string              `bigquery:"original_currency"`
	AmountEUR        bigquery.NullString `bigquery:"amount_eur"`
	AmountUSD        bigquery.NullString `bigquery:"amount_usd"`
	ExchangeRate     bigquery.NullString `bigquery:"exchange_rate"`
	Subcategory      string              `bigquery:"subcategory"`
	Category         string              `bigquery:"category"`
	BudgetType       string              `bigquery:"budget_type"`
	IsQuorum         bool                `bigquery:"is_quorum"`
	IsEUBill         bool                `bigquery:"is_eu_bill"`
	IsManual         bool                `bigquery:"is_manual"`
	CardLast4        string              `bigquery:"card_last4"`
	Confidence       int64               `bigquery:"confidence"`
	Method           string              `bigquery:"method"`
	Source           string              `bigquery:"source"`
	ImportedAt       time.Time           `bigquery:"imported_at"`
}

const transactionColumns = `fingerprint, txn_date, description,
	CAST(original_amount AS STRING) AS original_amount, original_currency,
	CAST(amount_eur AS STRING) AS amount_eur,
	CAST(amount_usd AS STRING) AS amount_usd,
	CAST(exchange_rate AS STRING) AS exchange_rate,
	subcategory, category, budget_type, is_quorum, is_eu_bill, is_manual,
	card_last4, confidence, method, source, imported_at`

func (r transactionRow) toDomain() (*domain.Transaction, error) {
	tx := &domain.Transaction{
		Fingerprint:      r.Fingerprint,
		Date:             r.TxnDate,
		Description:      r.Description,
		OriginalCurrency: domain.Currency(r.OriginalCurrency),
		Subcategory:      r.Subcategory,
		Category:         r.Category,
		BudgetType:       r.BudgetType,
		IsQuorum:         r.IsQuorum,
		IsEUBill:         r.IsEUBill,
		IsManual:         r.IsManual,
		CardLast4:        r.CardLast4,
		Confidence:       int(r.Confidence),
		Method:           domain.Method(r.Method),
		Source:           r.Source,
		ImportedAt:       r.ImportedAt,
	}
	orig, err := parseNumeric(bigquery.NullString{StringVal: r.OriginalAmount, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("original_amount: %w", err)
	}
	tx.OriginalAmount = orig.Decimal
	if tx.AmountEUR, err = parseNumeric(r.AmountEUR); err != nil {
		return nil, fmt.Errorf("amount_eur: %w", err)
	}
	if tx.AmountUSD, err = parseNumeric(r.AmountUSD); err != nil {
		return nil, fmt.Errorf("amount_usd: %w", err)
	}
	if tx.ExchangeRate, err = parseNumeric(r.ExchangeRate); err != nil {
		return nil, fmt.Errorf("exchange_rate: %w", err)
	}
	return tx, nil
}

// InsertTransactionWithClient merges one row keyed on fingerprint. A merge
// that inserts nothing means the fingerprint was already present.
func InsertTransactionWithClient(ctx context.Context, client *bigquery.Client, t Tables, tx *domain.Transaction) error {
	log := logger.FromContext(ctx)

	if err := tx.Validate(); err != nil {
		return fmt.Errorf("InsertTransactionWithClient: %w", err)
	}

	q := client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @fingerprint AS fingerprint) S
		ON T.fingerprint = S.fingerprint
		WHEN NOT MATCHED THEN
		  INSERT (fingerprint, txn_date, description, original_amount, original_currency,
		          amount_eur, amount_usd, exchange_rate, subcategory, category, budget_type,
		          is_quorum, is_eu_bill, is_manual, card_last4, confidence, method, source, imported_at)
		  VALUES (@fingerprint, @txn_date, @description, CAST(@original_amount AS NUMERIC), @original_currency,
		          CAST(NULLIF(@amount_eur, '') AS NUMERIC), CAST(NULLIF(@amount_usd, '') AS NUMERIC),
		          CAST(NULLIF(@exchange_rate, '') AS NUMERIC), @subcategory, @category, @budget_type,
		          @is_quorum, @is_eu_bill, @is_manual, @card_last4, @confidence, @method, @source, @imported_at)
	`, t.Transactions()))

	importedAt := tx.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	q.Parameters = []bigquery.QueryParameter{
		{Name: "fingerprint", Value: tx.Fingerprint},
		{Name: "txn_date", Value: tx.Date},
		{Name: "description", Value: tx.Description},
		{Name: "original_amount", Value: tx.OriginalAmount.String()},
		{Name: "original_currency", Value: string(tx.OriginalCurrency)},
		{Name: "amount_eur", Value: numericParam(tx.AmountEUR)},
		{Name: "amount_usd", Value: numericParam(tx.AmountUSD)},
		{Name: "exchange_rate", Value: numericParam(tx.ExchangeRate)},
		{Name: "subcategory", Value: tx.Subcategory},
		{Name: "category", Value: tx.Category},
		{Name: "budget_type", Value: tx.BudgetType},
		{Name: "is_quorum", Value: tx.IsQuorum},
		{Name: "is_eu_bill", Value: tx.IsEUBill},
		{Name: "is_manual", Value: tx.IsManual},
		{Name: "card_last4", Value: tx.CardLast4},
		{Name: "confidence", Value: tx.Confidence},
		{Name: "method", Value: string(tx.Method)},
		{Name: "source", Value: tx.Source},
		{Name: "imported_at", Value: importedAt},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("fingerprint", tx.Fingerprint).Msg("failed to insert transaction")
		return fmt.Errorf("InsertTransactionWithClient: %w", err)
	}
	if affected == 0 {
		return ledger.ErrDuplicate
	}
	return nil
}

// ExistingFingerprintsWithClient returns the subset of fingerprints already stored.
func ExistingFingerprintsWithClient(ctx context.Context, client *bigquery.Client, t Tables, fingerprints []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(fingerprints) == 0 {
		return out, nil
	}

	q := client.Query(fmt.Sprintf(`
		SELECT fingerprint FROM %s WHERE fingerprint IN UNNEST(@fingerprints)
	`, t.Transactions()))
	q.Parameters = []bigquery.QueryParameter{{Name: "fingerprints", Value: fingerprints}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExistingFingerprintsWithClient: %w", err)
	}
	for {
		var row struct {
			Fingerprint string `bigquery:"fingerprint"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExistingFingerprintsWithClient: iterating: %w", err)
		}
		out[row.Fingerprint] = true
	}
	return out, nil
}

// buildTransactionFilter renders f as a WHERE clause with named parameters.
func buildTransactionFilter(f ledger.Filter) (string, []bigquery.QueryParameter) {
	var (
		conds  []string
		params []bigquery.QueryParameter
	)
	if f.From.IsValid() {
		conds = append(conds, "txn_date >= @from")
		params = append(params, bigquery.QueryParameter{Name: "from", Value: f.From})
	}
	if f.To.IsValid() {
		conds = append(conds, "txn_date <= @to")
		params = append(params, bigquery.QueryParameter{Name: "to", Value: f.To})
	}
	if f.Category != "" {
		conds = append(conds, "category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.Subcategory != "" {
		conds = append(conds, "subcategory = @subcategory")
		params = append(params, bigquery.QueryParameter{Name: "subcategory", Value: f.Subcategory})
	}
	if f.IsQuorum != nil {
		conds = append(conds, "is_quorum = @is_quorum")
		params = append(params, bigquery.QueryParameter{Name: "is_quorum", Value: *f.IsQuorum})
	}
	if f.IsManual != nil {
		conds = append(conds, "is_manual = @is_manual")
		params = append(params, bigquery.QueryParameter{Name: "is_manual", Value: *f.IsManual})
	}
	if len(conds) == 0 {
		return "", params
	}
	return "WHERE " + strings.Join(conds, " AND "), params
}

// QueryTransactionsWithClient lists transactions matching f, oldest first.
func QueryTransactionsWithClient(ctx context.Context, client *bigquery.Client, t Tables, f ledger.Filter) ([]*domain.Transaction, error) {
	where, params := buildTransactionFilter(f)
	sql := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY txn_date, fingerprint", transactionColumns, t.Transactions(), where)
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsWithClient: %w", err)
	}

	var out []*domain.Transaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsWithClient: iterating: %w", err)
		}
		tx, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsWithClient: %s: %w", row.Fingerprint, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// MineDescriptionPatternsWithClient groups non-Quorum rows by description and
// subcategory, keeping pairs seen at least minCount times.
func MineDescriptionPatternsWithClient(ctx context.Context, client *bigquery.Client, t Tables, minCount int) ([]ledger.HistoricalPattern, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT description, subcategory, COUNT(*) AS cnt
		FROM %s
		WHERE is_quorum = FALSE AND subcategory != '' AND description != ''
		GROUP BY description, subcategory
		HAVING COUNT(*) >= @min_count
		ORDER BY cnt DESC, description
	`, t.Transactions()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "min_count", Value: minCount},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("MineDescriptionPatternsWithClient: %w", err)
	}

	var out []ledger.HistoricalPattern
	for {
		var row struct {
			Description string `bigquery:"description"`
			Subcategory string `bigquery:"subcategory"`
			Cnt         int64  `bigquery:"cnt"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("MineDescriptionPatternsWithClient: iterating: %w", err)
		}
		out = append(out, ledger.HistoricalPattern{Description: row.Description, Subcategory: row.Subcategory, Count: int(row.Cnt)})
	}
	return out, nil
}
