package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/statement-ledger/internal/statement"
)

func TestSteps_RefuseOutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		step  PipelineStep
		stage Stage
	}{
		{"categorize before load", &CategorizeStep{}, StageNew},
		{"dedup before categorize", &DedupStep{}, StageLoaded},
		{"rates before dedup", &ResolveRatesStep{}, StageCategorized},
		{"prepare before rates", &PrepareStep{}, StageDeduplicated},
		{"commit before prepare", &CommitStep{}, StageRatesResolved},
		{"commit twice", &CommitStep{}, StageCommitted},
		{"load twice", &LoadStep{}, StageLoaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBatch("test.csv", statement.KindStatement)
			b.Stage = tt.stage
			err := tt.step.Execute(context.Background(), b)
			if !errors.Is(err, ErrStageOrder) {
				t.Errorf("Execute() error = %v, want ErrStageOrder", err)
			}
			if b.Stage != tt.stage {
				t.Errorf("stage moved to %s", b.Stage)
			}
		})
	}
}

func TestPipeline_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch("test.csv", statement.KindStatement)
	err := NewPipeline(&LoadStep{}).Execute(ctx, b)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestStageString(t *testing.T) {
	if StageRatesResolved.String() != "rates_resolved" {
		t.Errorf("StageRatesResolved.String() = %q", StageRatesResolved.String())
	}
	if StatusNeedsRate.String() != "needs_rate" {
		t.Errorf("StatusNeedsRate.String() = %q", StatusNeedsRate.String())
	}
}

func TestItemStatus_String(t *testing.T) {
	tests := map[ItemStatus]string{
		StatusPending:   "pending",
		StatusNeedsRate: "needs_rate",
		StatusFailed:    "failed",
		ItemStatus(42):  "status(42)",
		ItemStatus(-1):  "status(-1)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("ItemStatus(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
