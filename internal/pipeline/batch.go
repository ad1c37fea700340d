package pipeline

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

var ErrStageOrder = errors.New("pipeline stage out of order")

// Stage is the position of a batch in the import state machine.
type Stage int

const (
	StageNew Stage = iota
	StageLoaded
	StageCategorized
	StageDeduplicated
	StageRatesResolved
	StagePrepared
	StageCommitted
)

func (s Stage) String() string {
	switch s {
	case StageNew:
		return "new"
	case StageLoaded:
		return "loaded"
	case StageCategorized:
		return "categorized"
	case StageDeduplicated:
		return "deduplicated"
	case StageRatesResolved:
		return "rates_resolved"
	case StagePrepared:
		return "prepared"
	case StageCommitted:
		return "committed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ItemStatus tracks a row through the batch.
type ItemStatus int

const (
	StatusPending ItemStatus = iota
	// Already in the ledger before this import.
	StatusDuplicate
	// Regular row with no resolvable rate; withheld from commit.
	StatusNeedsRate
	StatusReady
	StatusInserted
	// Lost the fingerprint race to a concurrent import.
	StatusSkipped
	StatusFailed
)

func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDuplicate:
		return "duplicate"
	case StatusNeedsRate:
		return "needs_rate"
	case StatusReady:
		return "ready"
	case StatusInserted:
		return "inserted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Item is one normalized row and everything the stages attach to it.
type Item struct {
	Row      statement.Row
	Category categorizer.Result
	// Rate stays invalid when none could be resolved; it is never defaulted.
	Rate   decimal.NullDecimal
	Tx     *domain.Transaction
	Status ItemStatus
}

// Batch is the unit of work of one import run.
type Batch struct {
	Source string
	Kind   statement.Kind
	Stage  Stage

	Normalized statement.Result
	Items      []*Item
	Rates      map[civil.Date]decimal.Decimal

	Summary Summary
	Report  *CommitReport
}

// NewBatch starts an empty batch for the named source.
func NewBatch(source string, kind statement.Kind) *Batch {
	return &Batch{Source: source, Kind: kind, Stage: StageNew}
}

// advance moves the batch from one stage to the next, refusing to skip or
// repeat a stage.
func (b *Batch) advance(from, to Stage) error {
	if b.Stage != from {
		return fmt.Errorf("%w: want %s, batch is %s", ErrStageOrder, from, b.Stage)
	}
	b.Stage = to
	return nil
}

func (b *Batch) require(stage Stage) error {
	if b.Stage != stage {
		return fmt.Errorf("%w: want %s, batch is %s", ErrStageOrder, stage, b.Stage)
	}
	return nil
}

// Fresh returns the items not already present in the ledger.
func (b *Batch) Fresh() []*Item {
	out := make([]*Item, 0, len(b.Items))
	for _, it := range b.Items {
		if it.Status != StatusDuplicate {
			out = append(out, it)
		}
	}
	return out
}

// Ready returns the items prepared for commit.
func (b *Batch) Ready() []*Item {
	var out []*Item
	for _, it := range b.Items {
		if it.Status == StatusReady {
			out = append(out, it)
		}
	}
	return out
}
