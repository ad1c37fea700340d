package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/infra"
	"github.com/dvloznov/statement-ledger/internal/report"
)

type reimbursementsCmd struct {
	recompute bool
}

func (*reimbursementsCmd) Name() string     { return "reimbursements" }
func (*reimbursementsCmd) Synopsis() string { return "show monthly Quorum totals in USD" }
func (*reimbursementsCmd) Usage() string {
	return `ledger reimbursements [-recompute]

  Prints the USD total of Quorum transactions per month.
`
}

func (c *reimbursementsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.recompute, "recompute", false, "Rebuild the totals from the ledger first")
}

func (c *reimbursementsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	store, err := infra.OpenStore(ctx, cfg)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	var totals []domain.QuorumTotal
	if c.recompute {
		totals, err = store.RecomputeQuorumTotals(ctx)
	} else {
		totals, err = store.ListQuorumTotals(ctx)
	}
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	printMarkdown(report.RenderQuorumTotals(totals))
	return subcommands.ExitSuccess
}
