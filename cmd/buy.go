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

// buyCmd holds the flags for the 'buy' subcommand.
type buyCmd struct {
	date     string
	symbol   string
	quantity string
	price    string
	fees     string
	memo     string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a quantity of a symbol" }
func (*buyCmd) Usage() string {
	return `sbx buy -s <symbol> -q <quantity> -p <price> [-fees <fees>] [-d <date>] [-m <memo>]

  Executes a buy, debiting cash for quantity*price plus fees.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", sandbox.Today().String(), "Trade date.")
	f.StringVar(&c.symbol, "s", "", "Symbol to buy.")
	f.StringVar(&c.quantity, "q", "", "Quantity to buy.")
	f.StringVar(&c.price, "p", "", "Price per unit.")
	f.StringVar(&c.fees, "fees", "0", "Transaction fees.")
	f.StringVar(&c.memo, "m", "", "Free form memo attached to the transaction.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, fees, status := parseTrade(c.date, c.quantity, c.price, c.fees)
	if status != subcommands.ExitSuccess {
		return status
	}

	p, err := decodePortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx, err := p.ExecuteBuy(day, c.symbol, quantity, sandbox.M(price, p.Currency()), sandbox.M(fees, p.Currency()), c.memo)
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
