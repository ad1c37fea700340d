package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// Runner is the part of pipeline.Importer an import job needs.
type Runner interface {
	Run(ctx context.Context, src pipeline.Source, confirm pipeline.ConfirmFunc) (*pipeline.Batch, *pipeline.CommitReport, error)
}

// NewImportHandler returns a handler that imports job.URI from objects and
// commits it without asking.
func NewImportHandler(runner Runner, objects gcsuploader.ObjectStore) JobHandler {
	return func(ctx context.Context, job Job) error {
		ij, ok := job.(*ImportJob)
		if !ok {
			return Permanent(fmt.Errorf("unsupported job type %q", job.GetType()))
		}
		log := logger.FromContext(ctx).With().Str("job_id", ij.JobID).Str("uri", ij.URI).Logger()

		src := pipeline.GCSSource(objects, ij.URI, ij.Kind)
		b, report, err := runner.Run(ctx, src, pipeline.AutoConfirm)
		if b != nil {
			summary := b.Summary
			ij.Summary = &summary
		}
		ij.Report = report
		if err != nil {
			log.Error().Err(err).Msg("import job failed")
			if isInputError(err) {
				return Permanent(err)
			}
			return err
		}

		if report != nil {
			log.Info().
				Int("inserted", report.Inserted).
				Int("skipped_duplicate", report.SkippedDuplicate).
				Int("failed", len(report.Failed)).
				Msg("import job committed")
		}
		return nil
	}
}

// isInputError reports errors caused by the export itself; retrying them
// cannot succeed.
func isInputError(err error) bool {
	return errors.Is(err, statement.ErrMissingColumn) ||
		errors.Is(err, statement.ErrUnknownKind) ||
		errors.Is(err, pipeline.ErrStageOrder)
}
