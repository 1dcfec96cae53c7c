package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox"
)

// initCmd holds the flags for the 'init' subcommand.
type initCmd struct {
	cash     float64
	currency string
	force    bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new portfolio funded with initial cash" }
func (*initCmd) Usage() string {
	return `sbx init -cash <amount> [-c <currency>] [-force]

  Creates a new portfolio snapshot funded with the given cash balance.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.cash, "cash", 100000, "Initial cash balance.")
	f.StringVar(&c.currency, "c", "USD", "Portfolio currency code.")
	f.BoolVar(&c.force, "force", false, "Overwrite an existing snapshot.")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		if _, err := os.Stat(*snapshotFile); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %q already exists, use -force to overwrite\n", *snapshotFile)
			return subcommands.ExitUsageError
		}
	}

	day := sandbox.Today()
	p, err := sandbox.New(day, sandbox.M(c.cash, c.currency))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := saveAndRecord(day, p); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Created portfolio %s with %s\n", *snapshotFile, p.Cash())
	return subcommands.ExitSuccess
}
