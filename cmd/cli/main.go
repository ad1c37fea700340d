// Command ledger imports credit-card statements into the ledger and reports
// on it.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "ledger")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands {
		commander.Register(c.cmd, c.group)
	}

	// Answers shell completion requests and exits; a no-op otherwise.
	completion(commands).Complete("ledger")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

type registration struct {
	cmd   subcommands.Command
	group string
}

var commands = []registration{
	{&initCmd{}, "setup"},
	{&importCmd{}, "import"},
	{&importCmd{historical: true}, "import"},
	{&uploadCmd{}, "import"},
	{&learnCmd{}, "categories"},
	{&suggestCmd{}, "categories"},
	{&patternsCmd{}, "categories"},
	{&rateCmd{}, "rates"},
	{&reimbursementsCmd{}, "reports"},
}
