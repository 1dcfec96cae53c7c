package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox/renderer"
)

// riskCmd holds the flags for the 'risk' subcommand.
type riskCmd struct {
	riskFree float64
}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "display the portfolio risk report" }
func (*riskCmd) Usage() string {
	return `sbx risk [-rf <rate>]

  Computes volatility, Sharpe ratio, max drawdown and Value at Risk from
  the daily value history. Record observations with 'sbx history -record'
  or any mutating command.
`
}

func (c *riskCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.riskFree, "rf", 0.02, "Annual risk free rate for the Sharpe ratio.")
}

func (c *riskCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := decodePortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	h, err := decodeHistory()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report, err := p.RiskReport(h.TotalValues(), c.riskFree)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderRisk(renderer.NewRisk(report)))
	return subcommands.ExitSuccess
}
