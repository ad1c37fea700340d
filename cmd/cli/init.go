package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/infra"
)

type initCmd struct {
	categories string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the ledger and seed the category map" }
func (*initCmd) Usage() string {
	return `ledger init [-categories <file.yaml>]

  Seeds the subcategory -> (category, budget type) map. Existing
  subcategories are left untouched, so init can be re-run safely.
  Without -categories the built-in map is used.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.categories, "categories", "", "YAML list of {subcategory, category, budget_type} entries")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, _, err := setup()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	mappings := domain.DefaultCategories()
	if c.categories != "" {
		if mappings, err = loadCategories(c.categories); err != nil {
			fail("%v", err)
			return subcommands.ExitUsageError
		}
	}

	store, err := infra.OpenStore(ctx, cfg)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	n, err := store.SeedCategories(ctx, mappings)
	if err != nil {
		fail("seeding categories: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Seeded %d of %d categories.\n", n, len(mappings))
	return subcommands.ExitSuccess
}

// loadCategories reads a category map file. Every entry needs all three
// fields and subcategories must be unique.
func loadCategories(path string) ([]domain.CategoryMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadCategories: %w", err)
	}
	var mappings []domain.CategoryMapping
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("loadCategories: %s: %w", path, err)
	}
	seen := make(map[string]bool, len(mappings))
	for i, m := range mappings {
		if m.Subcategory == "" || m.Category == "" || m.BudgetType == "" {
			return nil, fmt.Errorf("loadCategories: %s: entry %d is incomplete", path, i+1)
		}
		if seen[m.Subcategory] {
			return nil, fmt.Errorf("loadCategories: %s: duplicate subcategory %q", path, m.Subcategory)
		}
		seen[m.Subcategory] = true
	}
	return mappings, nil
}
