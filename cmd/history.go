package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox"
	"github.com/quantfolio/sandbox/renderer"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	record bool
	date   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show or record the daily value history" }
func (*historyCmd) Usage() string {
	return `sbx history [-record] [-d <date>]

  Shows the daily value observations feeding the risk report.
  With -record, observes the portfolio's current values first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.record, "record", false, "Record an observation before showing the history.")
	f.StringVar(&c.date, "d", sandbox.Today().String(), "Observation date used with -record.")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.record {
		day, err := sandbox.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		p, err := decodePortfolio()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := recordValue(day, p); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	h, err := decodeHistory()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HistoryMarkdown(h))
	return subcommands.ExitSuccess
}
