package statement

import (
	"context"
	"sort"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

// Options configures row classification.
type Options struct {
	Source         string
	SourceCurrency domain.Currency
	QuorumCards    []string
	EUBillMarkers  []string
}

// Normalizer turns raw rows into sorted, fingerprinted, classified debits.
type Normalizer struct {
	opts        Options
	quorumCards map[string]bool
	markers     []string
}

func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		opts:        opts,
		quorumCards: make(map[string]bool, len(opts.QuorumCards)),
	}
	if n.opts.SourceCurrency == "" {
		n.opts.SourceCurrency = domain.USD
	}
	for _, c := range opts.QuorumCards {
		n.quorumCards[CardLast4(c)] = true
	}
	for _, m := range opts.EUBillMarkers {
		if m = strings.TrimSpace(m); m != "" {
			n.markers = append(n.markers, strings.ToUpper(m))
		}
	}
	return n
}

// IsQuorumCard reports whether the card identifier is on the Quorum allow-list.
func (n *Normalizer) IsQuorumCard(cardNo string) bool {
	last4 := CardLast4(cardNo)
	return last4 != "" && n.quorumCards[last4]
}

// IsEUBill reports whether the description names a recurring EUR obligation.
func (n *Normalizer) IsEUBill(description string) bool {
	upper := strings.ToUpper(description)
	for _, m := range n.markers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// Normalize parses, classifies and deduplicates a batch of raw rows.
// Malformed rows are rejected with a reason and never abort the batch.
func (n *Normalizer) Normalize(ctx context.Context, raw []RawRow) Result {
	log := logger.FromContext(ctx)

	var res Result
	seen := make(map[string]int)

	for _, rr := range raw {
		// Any credit marks a refund, even alongside a debit.
		if strings.TrimSpace(rr.Credit) != "" {
			res.Credits++
			continue
		}
		debit, hasDebit, err := ParseAmount(rr.Debit)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Line: rr.Line, Raw: rr, Reason: err.Error()})
			continue
		}
		if !hasDebit {
			res.Rejected = append(res.Rejected, Rejection{Line: rr.Line, Raw: rr, Reason: "no amount"})
			continue
		}

		date, err := ParseDate(rr.Date)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Line: rr.Line, Raw: rr, Reason: err.Error()})
			continue
		}

		row := Row{
			Line:           rr.Line,
			Source:         n.opts.Source,
			Fingerprint:    Fingerprint(rr.Date, rr.Description, rr.Debit),
			Date:           date,
			RawDate:        rr.Date,
			Description:    strings.TrimSpace(rr.Description),
			Amount:         debit,
			RawAmount:      rr.Debit,
			SourceCurrency: n.opts.SourceCurrency,
			CardLast4:      CardLast4(rr.CardNo),
			IsQuorum:       n.IsQuorumCard(rr.CardNo) || strings.EqualFold(rr.Subcategory, domain.QuorumSubcategory),
			IsEUBill:       n.IsEUBill(rr.Description),
			Subcategory:    strings.TrimSpace(rr.Subcategory),
			Category:       strings.TrimSpace(rr.Category),
		}
		if row.IsQuorum {
			row.IsEUBill = false
		}

		if first, dup := seen[row.Fingerprint]; dup {
			d := Decision{Row: row, Outcome: DroppedAsIntraFileDuplicate, KeptLine: first}
			res.Dropped = append(res.Dropped, d)
			res.Decisions = append(res.Decisions, d)
			log.Debug().
				Str("fingerprint", row.Fingerprint).
				Int("line", row.Line).
				Int("kept_line", first).
				Msg("dropping intra-file duplicate")
			continue
		}
		seen[row.Fingerprint] = row.Line
		res.Decisions = append(res.Decisions, Decision{Row: row, Outcome: Kept})
		res.Rows = append(res.Rows, row)
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].Date.Before(res.Rows[j].Date)
	})

	log.Info().
		Str("source", n.opts.Source).
		Int("kept", len(res.Rows)).
		Int("dropped", len(res.Dropped)).
		Int("rejected", len(res.Rejected)).
		Int("credits", res.Credits).
		Msg("normalized statement rows")

	return res
}
