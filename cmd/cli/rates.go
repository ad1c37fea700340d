package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/google/subcommands"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/rates"
)

type rateCmd struct {
	interactive bool
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "show the EUR->USD rate used for a date" }
func (*rateCmd) Usage() string {
	return `ledger rate [-interactive=false] <YYYY-MM-DD>

  Resolves the rate from the cache, the ECB reference rates or a nearby
  business day. When nothing is found you are asked to type one in.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "interactive", true, "Prompt for a rate when none can be fetched")
}

func (c *rateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail("exactly one date is required")
		return subcommands.ExitUsageError
	}
	day, err := civil.ParseDate(f.Arg(0))
	if err != nil {
		fail("date %q: want YYYY-MM-DD", f.Arg(0))
		return subcommands.ExitUsageError
	}

	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	opts := app.Options{}
	if c.interactive {
		opts.Manual = rates.NewPromptEntry(os.Stdin, os.Stdout)
	}
	a, err := openApp(ctx, cfg, opts)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rate, ok := a.Resolver.RateFor(ctx, day)
	if !ok {
		fail("no rate for %s", day)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s  1 EUR = %s USD\n", day, rate.String())
	return subcommands.ExitSuccess
}
