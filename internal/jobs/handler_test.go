package jobs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	src    pipeline.Source
	batch  *pipeline.Batch
	report *pipeline.CommitReport
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, src pipeline.Source, confirm pipeline.ConfirmFunc) (*pipeline.Batch, *pipeline.CommitReport, error) {
	f.src = src
	if f.batch != nil && !confirm(f.batch.Summary) {
		return f.batch, nil, nil
	}
	return f.batch, f.report, f.err
}

type otherJob struct{}

func (otherJob) GetID() string             { return "x" }
func (otherJob) GetType() jobs.JobType     { return "other" }
func (otherJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

func TestImportHandler_AttachesReport(t *testing.T) {
	b := pipeline.NewBatch("may.csv", statement.KindStatement)
	b.Summary = pipeline.Summary{Source: "may.csv", Total: 3, New: 2, Duplicate: 1}
	runner := &fakeRunner{batch: b, report: &pipeline.CommitReport{Inserted: 2}}

	h := jobs.NewImportHandler(runner, nil)
	job := &jobs.ImportJob{JobID: "j1", URI: "gs://bucket/statements/2024/05/may.csv", Kind: statement.KindStatement}
	require.NoError(t, h(context.Background(), job))

	assert.Equal(t, "may.csv", runner.src.Name)
	assert.Equal(t, statement.KindStatement, runner.src.Kind)
	require.NotNil(t, job.Summary)
	assert.Equal(t, 2, job.Summary.New)
	require.NotNil(t, job.Report)
	assert.Equal(t, 2, job.Report.Inserted)
}

func TestImportHandler_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"missing column", fmt.Errorf("Preview: %w", statement.ErrMissingColumn), true},
		{"unknown kind", fmt.Errorf("AdapterFor: %w", statement.ErrUnknownKind), true},
		{"transient", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := jobs.NewImportHandler(&fakeRunner{err: tt.err}, nil)
			err := h(context.Background(), &jobs.ImportJob{JobID: "j"})
			require.Error(t, err)
			assert.Equal(t, tt.permanent, jobs.IsPermanent(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestImportHandler_RejectsOtherJobs(t *testing.T) {
	h := jobs.NewImportHandler(&fakeRunner{}, nil)
	err := h(context.Background(), otherJob{})
	assert.True(t, jobs.IsPermanent(err))
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, jobs.Permanent(nil))
	assert.False(t, jobs.IsPermanent(errors.New("x")))
}
