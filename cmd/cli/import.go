package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/report"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// importCmd imports a statement export, or a historical ledger export when
// historical is set.
type importCmd struct {
	historical bool

	file    string
	uri     string
	yes     bool
	comma   string
	timeout time.Duration
}

func (c *importCmd) Name() string {
	if c.historical {
		return "migrate-history"
	}
	return "import"
}

func (c *importCmd) Synopsis() string {
	if c.historical {
		return "import a historical ledger export (DATE, DESCRIPTION, AMOUNT, SUBCATEGORY)"
	}
	return "preview and commit a credit-card statement export"
}

func (c *importCmd) Usage() string {
	return fmt.Sprintf(`ledger %s (-file <export.csv> | -uri gs://bucket/object) [-yes]

  Runs the export through categorization, deduplication, rate resolution
  and currency reconciliation, prints a preview and asks before writing.
  Rows already in the ledger are skipped, so re-running is safe.
`, c.Name())
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Local CSV export")
	f.StringVar(&c.uri, "uri", "", "gs:// URI of an uploaded export")
	f.BoolVar(&c.yes, "yes", false, "Commit without asking")
	f.StringVar(&c.comma, "comma", ",", "Field separator")
	f.DurationVar(&c.timeout, "timeout", 10*time.Minute, "Overall import deadline")
}

func (c *importCmd) kind() statement.Kind {
	if c.historical {
		return statement.KindHistorical
	}
	return statement.KindStatement
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.file == "") == (c.uri == "") {
		fail("exactly one of -file and -uri is required")
		return subcommands.ExitUsageError
	}
	if len([]rune(c.comma)) != 1 {
		fail("-comma must be a single character")
		return subcommands.ExitUsageError
	}

	ctx, cfg, log, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	a, err := openApp(ctx, cfg, app.Options{})
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var src pipeline.Source
	if c.file != "" {
		src = pipeline.FileSource(c.file, c.kind())
	} else {
		objects, err := gcsuploader.NewClient(ctx)
		if err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		defer objects.Close()
		src = pipeline.GCSSource(objects, c.uri, c.kind())
	}
	src.Comma = []rune(c.comma)[0]

	confirm := promptConfirm(os.Stdin, os.Stdout)
	if c.yes {
		confirm = func(s pipeline.Summary) bool {
			printMarkdown(report.RenderSummary(s))
			return true
		}
	}

	b, rep, err := a.Importer.Run(ctx, src, confirm)
	if err != nil {
		log.Error().Err(err).Str("source", src.Name).Msg("import failed")
		if rep != nil {
			printMarkdown(report.RenderReport(rep))
		}
		fail("%v", err)
		return subcommands.ExitFailure
	}
	if b.Summary.Ready == 0 {
		printMarkdown(report.RenderSummary(b.Summary))
	}
	printMarkdown(report.RenderReport(rep))

	if rep != nil && len(rep.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
