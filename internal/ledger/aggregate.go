package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// AggregateQuorumTotals sums Quorum amount_usd per calendar month, oldest first.
func AggregateQuorumTotals(txs []*domain.Transaction) []domain.QuorumTotal {
	type month struct{ year, month int }
	sums := make(map[month]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsQuorum || !tx.AmountUSD.Valid {
			continue
		}
		k := month{tx.Date.Year, int(tx.Date.Month)}
		sums[k] = sums[k].Add(tx.AmountUSD.Decimal)
	}

	out := make([]domain.QuorumTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, domain.QuorumTotal{Year: k.year, Month: k.month, TotalUSD: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// MinePatterns counts non-Quorum (description, subcategory) pairs.
func MinePatterns(txs []*domain.Transaction, minCount int) []HistoricalPattern {
	type pair struct{ desc, sub string }
	counts := make(map[pair]int)
	for _, tx := range txs {
		if tx.IsQuorum || tx.Subcategory == "" || tx.Description == "" {
			continue
		}
		counts[pair{tx.Description, tx.Subcategory}]++
	}

	var out []HistoricalPattern
	for k, n := range counts {
		if n >= minCount {
			out = append(out, HistoricalPattern{Description: k.desc, Subcategory: k.sub, Count: n})
		}
	}
	SortHistoricalPatterns(out)
	return out
}

// SortHistoricalPatterns orders by count descending, then description.
func SortHistoricalPatterns(ps []HistoricalPattern) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Count != ps[j].Count {
			return ps[i].Count > ps[j].Count
		}
		if ps[i].Description != ps[j].Description {
			return ps[i].Description < ps[j].Description
		}
		return ps[i].Subcategory < ps[j].Subcategory
	})
}

// SortPatterns orders merchant patterns most-confident first, then by pattern.
func SortPatterns(ps []domain.MerchantPattern) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Confidence != ps[j].Confidence {
			return ps[i].Confidence > ps[j].Confidence
		}
		return ps[i].Pattern < ps[j].Pattern
	})
}
