package pipeline

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// Summary is the preview of a prepared batch. Every input row lands in
// exactly one of Rejected, Credits, IntraFileDuplicates, Duplicate or New.
type Summary struct {
	Source string `json:"source"`

	Total               int `json:"total"`
	New                 int `json:"new"`
	Duplicate           int `json:"duplicate"`
	Rejected            int `json:"rejected"`
	Credits             int `json:"credits"`
	IntraFileDuplicates int `json:"intra_file_duplicates"`

	Quorum          int `json:"quorum"`
	EUBill          int `json:"eu_bill"`
	AutoCategorized int `json:"auto_categorized"`
	NeedsReview     int `json:"needs_review"`
	NeedsRate       int `json:"needs_rate"`
	Ready           int `json:"ready"`

	// Totals over ready rows.
	TotalEUR  decimal.Decimal `json:"total_eur"`
	TotalUSD  decimal.Decimal `json:"total_usd"`
	QuorumUSD decimal.Decimal `json:"quorum_usd"`

	First civil.Date `json:"first"`
	Last  civil.Date `json:"last"`

	Rejections []statement.Rejection `json:"-"`
}

// Summarize computes the preview counts of a batch.
func Summarize(b *Batch) Summary {
	s := Summary{
		Source:              b.Source,
		Total:               len(b.Items),
		Rejected:            len(b.Normalized.Rejected),
		Credits:             b.Normalized.Credits,
		IntraFileDuplicates: len(b.Normalized.Dropped),
		Rejections:          b.Normalized.Rejected,
	}

	for _, it := range b.Items {
		if it.Status == StatusDuplicate {
			s.Duplicate++
			continue
		}
		s.New++

		if !s.First.IsValid() || it.Row.Date.Before(s.First) {
			s.First = it.Row.Date
		}
		if !s.Last.IsValid() || it.Row.Date.After(s.Last) {
			s.Last = it.Row.Date
		}

		switch it.Row.Regime() {
		case domain.RegimeQuorum:
			s.Quorum++
		case domain.RegimeEUBill:
			s.EUBill++
		}
		if it.Category.Confidence > 0 {
			s.AutoCategorized++
		} else {
			s.NeedsReview++
		}

		switch it.Status {
		case StatusNeedsRate:
			s.NeedsRate++
		case StatusReady:
			s.Ready++
			if it.Tx.AmountEUR.Valid {
				s.TotalEUR = s.TotalEUR.Add(it.Tx.AmountEUR.Decimal)
			}
			if it.Tx.AmountUSD.Valid {
				s.TotalUSD = s.TotalUSD.Add(it.Tx.AmountUSD.Decimal)
				if it.Tx.IsQuorum {
					s.QuorumUSD = s.QuorumUSD.Add(it.Tx.AmountUSD.Decimal)
				}
			}
		}
	}
	return s
}

// RowError is a per-row persistence failure.
type RowError struct {
	Row statement.Row
	Err error
}

func (e RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line        int    `json:"line"`
		Fingerprint string `json:"fingerprint"`
		Description string `json:"description"`
		Error       string `json:"error"`
	}{e.Row.Line, e.Row.Fingerprint, e.Row.Description, e.Err.Error()})
}

// CommitReport is the outcome of Commit. Rows withheld for a missing rate
// are counted in NeedsRate and never written.
type CommitReport struct {
	Inserted         int                  `json:"inserted"`
	SkippedDuplicate int                  `json:"skipped_duplicate"`
	NeedsRate        int                  `json:"needs_rate"`
	NeedsReview      int                  `json:"needs_review"`
	Failed           []RowError           `json:"failed,omitempty"`
	Learned          int                  `json:"learned"`
	QuorumTotals     []domain.QuorumTotal `json:"quorum_totals,omitempty"`
}
