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

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	symbol     string
	initial    float64
	drift      float64
	volatility float64
	horizon    int
	iterations int
	seed       uint64
	target     float64
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a Monte Carlo price simulation" }
func (*simulateCmd) Usage() string {
	return `sbx simulate -s <symbol> [-mu <drift>] [-sigma <volatility>] [-horizon <days>] [-n <iterations>] [-seed <seed>] [-target <price>]

  Simulates GBM price paths for a held symbol starting at its current
  price, or from an explicit -initial price, and reports the terminal
  price distribution.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Held symbol to simulate.")
	f.Float64Var(&c.initial, "initial", 0, "Starting price. Defaults to the position's current price.")
	f.Float64Var(&c.drift, "mu", 0.05, "Annual drift of the price process.")
	f.Float64Var(&c.volatility, "sigma", 0.2, "Annual volatility of the price process.")
	f.IntVar(&c.horizon, "horizon", 252, "Horizon in trading days.")
	f.IntVar(&c.iterations, "n", 10000, "Number of simulated paths.")
	f.Uint64Var(&c.seed, "seed", 1, "Random seed, fixed for reproducible runs.")
	f.Float64Var(&c.target, "target", 0, "Optional target price to report the probability of reaching.")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initial := c.initial
	if initial == 0 {
		if c.symbol == "" {
			fmt.Fprintln(os.Stderr, "Error: give a held -s symbol or an explicit -initial price")
			return subcommands.ExitUsageError
		}
		p, err := decodePortfolio()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		pos, held := p.Position(c.symbol)
		if !held {
			fmt.Fprintf(os.Stderr, "Error: no position held in %q\n", c.symbol)
			return subcommands.ExitFailure
		}
		initial = pos.CurrentPrice.AsFloat()
	}

	g := sandbox.GBM{Initial: initial, Drift: c.drift, Volatility: c.volatility}
	report, err := sandbox.Simulate(c.symbol, g, c.horizon, c.iterations, c.seed, c.target)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderSimulation(renderer.NewSimulation(report)))
	return subcommands.ExitSuccess
}
