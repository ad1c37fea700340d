package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
)

type uploadCmd struct {
	file   string
	bucket string
	object string
}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "upload a statement export to GCS" }
func (*uploadCmd) Usage() string {
	return `ledger upload -file <export.csv> [-bucket <name>] [-object <name>]

  Uploads the export and prints its gs:// URI for 'ledger import -uri'
  or the API. Objects default to statements/YYYY/MM/<file>.
`
}

func (c *uploadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Local CSV export")
	f.StringVar(&c.bucket, "bucket", "", "GCS bucket, overrides gcs.bucket")
	f.StringVar(&c.object, "object", "", "Object name")
}

func (c *uploadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fail("-file is required")
		return subcommands.ExitUsageError
	}
	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	bucket := c.bucket
	if bucket == "" {
		bucket = cfg.GCS.Bucket
	}
	if bucket == "" {
		fail("no bucket: pass -bucket or set gcs.bucket")
		return subcommands.ExitUsageError
	}
	object := c.object
	if object == "" {
		object = gcsuploader.ObjectName(c.file, time.Now())
	}

	client, err := gcsuploader.NewClient(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	uri, err := client.Upload(ctx, bucket, object, c.file)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	fmt.Println(uri)
	return subcommands.ExitSuccess
}
