package statement

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// RawRow is one record as read by an input adapter, before any parsing.
type RawRow struct {
	Line        int
	Date        string
	Description string
	Debit       string
	Credit      string
	CardNo      string

	// Preassigned category, set only by ledgers that already carry one.
	Subcategory string
	Category    string
}

// Row is a normalized debit ready for categorization. It carries the single
// statement amount; dual-currency fields are filled in by reconciliation.
type Row struct {
	Line        int
	Source      string
	Fingerprint string

	Date        civil.Date
	RawDate     string
	Description string
	Amount      decimal.Decimal
	RawAmount   string
	// Currency of Amount for a regular row. Quorum rows are always USD and
	// EU-bill rows always EUR.
	SourceCurrency domain.Currency

	CardLast4 string
	IsQuorum  bool
	IsEUBill  bool

	Subcategory string
	Category    string
}

// Regime returns the conversion regime implied by the row flags.
func (r Row) Regime() domain.Regime {
	switch {
	case r.IsQuorum:
		return domain.RegimeQuorum
	case r.IsEUBill:
		return domain.RegimeEUBill
	default:
		return domain.RegimeRegular
	}
}

// DedupOutcome is the intra-file duplicate policy result for one row:
// the first occurrence of a fingerprint is kept, every later one is dropped.
type DedupOutcome int

const (
	Kept DedupOutcome = iota
	DroppedAsIntraFileDuplicate
)

func (o DedupOutcome) String() string {
	switch o {
	case Kept:
		return "kept"
	case DroppedAsIntraFileDuplicate:
		return "dropped_as_intra_file_duplicate"
	default:
		return "unknown"
	}
}

// Decision records the dedup outcome for a parsed row. KeptLine points at the
// row that won when the outcome is DroppedAsIntraFileDuplicate.
type Decision struct {
	Row      Row
	Outcome  DedupOutcome
	KeptLine int
}

// Rejection is an input row excluded for being malformed.
type Rejection struct {
	Line   int
	Raw    RawRow
	Reason string
}

// Result is the output of Normalize.
type Result struct {
	Rows      []Row
	Dropped   []Decision
	Rejected  []Rejection
	Credits   int
	Decisions []Decision
}
