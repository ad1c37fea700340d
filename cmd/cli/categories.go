package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/subcommands"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/report"
)

type learnCmd struct {
	description string
	subcategory string
}

func (*learnCmd) Name() string     { return "learn" }
func (*learnCmd) Synopsis() string { return "teach the categorizer a merchant" }
func (*learnCmd) Usage() string {
	return `ledger learn -description "<text>" -subcategory <name>

  Stores the merchant token of the description as a pattern for the
  subcategory, or strengthens an existing one.
`
}

func (c *learnCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "description", "", "Transaction description")
	f.StringVar(&c.subcategory, "subcategory", "", "Subcategory to learn")
}

func (c *learnCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	token := categorizer.ExtractPattern(c.description)
	if token == "" || strings.TrimSpace(c.subcategory) == "" {
		fail("-description with a merchant token and -subcategory are required")
		return subcommands.ExitUsageError
	}

	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	a, err := openApp(ctx, cfg, app.Options{})
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if _, ok := a.Categorizer.Lookup(strings.TrimSpace(c.subcategory)); !ok {
		fail("unknown subcategory %q (run `ledger init` or check the category map)", c.subcategory)
		return subcommands.ExitUsageError
	}
	if err := a.Categorizer.Learn(ctx, c.description, c.subcategory); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Learned %s -> %s\n", token, strings.TrimSpace(c.subcategory))
	return subcommands.ExitSuccess
}

type suggestCmd struct {
	from  string
	to    string
	limit int
	learn bool
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "ask Gemini to categorize rows awaiting review" }
func (*suggestCmd) Usage() string {
	return `ledger suggest [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-limit n] [-learn]

  Lists uncategorized rows with a Gemini proposal from the known
  subcategories. With -learn the proposals are stored as patterns.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First date")
	f.StringVar(&c.to, "to", "", "Last date")
	f.IntVar(&c.limit, "limit", 20, "Maximum rows to suggest for")
	f.BoolVar(&c.learn, "learn", false, "Learn every usable proposal")
}

func (c *suggestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := ledger.Filter{Subcategory: domain.UncategorizedSubcategory}
	var err error
	if c.from != "" {
		if filter.From, err = civil.ParseDate(c.from); err != nil {
			fail("-from: want YYYY-MM-DD")
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if filter.To, err = civil.ParseDate(c.to); err != nil {
			fail("-to: want YYYY-MM-DD")
			return subcommands.ExitUsageError
		}
	}

	ctx, cfg, log, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	if cfg.Gemini.Project == "" {
		fail("gemini.project is not configured")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, cfg, app.Options{})
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	suggester, err := categorizer.NewGeminiSuggester(ctx, cfg.Gemini.Project, cfg.Gemini.Location, cfg.Gemini.Model)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	rows, err := a.Store.QueryTransactions(ctx, filter)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	rows = reviewQueue(rows, c.limit)

	out := make([]report.Suggestion, 0, len(rows))
	learned := 0
	for _, tx := range rows {
		s := report.Suggestion{Date: tx.Date, Description: tx.Description, AmountEUR: tx.AmountEUR, AmountUSD: tx.AmountUSD}
		res, err := a.Categorizer.Suggest(ctx, suggester, tx.Description)
		if err != nil {
			log.Warn().Err(err).Str("description", tx.Description).Msg("suggestion failed")
		} else if res.Subcategory != "" {
			s.Subcategory, s.Category = res.Subcategory, res.Category
			if c.learn {
				if err := a.Categorizer.Learn(ctx, tx.Description, res.Subcategory); err != nil {
					log.Warn().Err(err).Str("description", tx.Description).Msg("learn failed")
				} else {
					learned++
				}
			}
		}
		out = append(out, s)
	}

	printMarkdown(report.RenderSuggestions(out))
	if c.learn {
		fmt.Printf("Learned %d patterns.\n", learned)
	}
	return subcommands.ExitSuccess
}

// reviewQueue keeps rows that still need a human, at most limit of them.
// Quorum rows never need review.
func reviewQueue(rows []*domain.Transaction, limit int) []*domain.Transaction {
	var out []*domain.Transaction
	for _, tx := range rows {
		if tx.IsQuorum || !tx.NeedsReview() {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, tx)
	}
	return out
}

type patternsCmd struct{}

func (*patternsCmd) Name() string     { return "patterns" }
func (*patternsCmd) Synopsis() string { return "list learned merchant patterns" }
func (*patternsCmd) Usage() string {
	return `ledger patterns

  Lists merchant patterns, most confident first.
`
}
func (*patternsCmd) SetFlags(*flag.FlagSet) {}

func (*patternsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	a, err := openApp(ctx, cfg, app.Options{})
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	printMarkdown(report.RenderPatterns(a.Categorizer.Patterns()))
	return subcommands.ExitSuccess
}
