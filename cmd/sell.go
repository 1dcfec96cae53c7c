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

// sellCmd holds the flags for the 'sell' subcommand.
type sellCmd struct {
	date     string
	symbol   string
	quantity string
	price    string
	fees     string
	memo     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a quantity of a held symbol" }
func (*sellCmd) Usage() string {
	return `sbx sell -s <symbol> -q <quantity> -p <price> [-fees <fees>] [-d <date>] [-m <memo>]

  Executes a sell, crediting cash for quantity*price minus fees and
  realizing the profit or loss against the position's cost basis.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", sandbox.Today().String(), "Trade date.")
	f.StringVar(&c.symbol, "s", "", "Symbol to sell.")
	f.StringVar(&c.quantity, "q", "", "Quantity to sell.")
	f.StringVar(&c.price, "p", "", "Price per unit.")
	f.StringVar(&c.fees, "fees", "0", "Transaction fees.")
	f.StringVar(&c.memo, "m", "", "Free form memo attached to the transaction.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, fees, status := parseTrade(c.date, c.quantity, c.price, c.fees)
	if status != subcommands.ExitSuccess {
		return status
	}

	p, err := decodePortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx, err := p.ExecuteSell(day, c.symbol, quantity, sandbox.M(price, p.Currency()), sandbox.M(fees, p.Currency()), c.memo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if status := saveAndRecord(day, p); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Println(renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
