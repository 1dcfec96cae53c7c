package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox"
	"github.com/shopspring/decimal"
)

// updateCmd holds the flags for the 'update' subcommand.
type updateCmd struct {
	date    string
	feedURL string
	path    string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "mark held positions to current market prices" }
func (*updateCmd) Usage() string {
	return `sbx update [SYMBOL=PRICE ...] | sbx update -feed <url-pattern> -path <jsonpath>

  Updates the current price of held positions, either from explicit
  SYMBOL=PRICE arguments or by querying a JSON quote endpoint for every
  held symbol. The url pattern must carry one %s verb for the symbol.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", sandbox.Today().String(), "Observation date recorded in the history.")
	f.StringVar(&c.feedURL, "feed", "", "Quote endpoint URL pattern, one %s for the symbol.")
	f.StringVar(&c.path, "path", "$.last", "jsonpath to the price in the feed response.")
}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var prices map[string]decimal.Decimal
	switch {
	case c.feedURL != "":
		symbols := make([]string, 0, len(p.Positions()))
		for _, pos := range p.Positions() {
			symbols = append(symbols, pos.Symbol)
		}
		feed := sandbox.NewFeed(c.feedURL, c.path)
		prices, err = feed.FetchAll(symbols)
		if err != nil {
			// partial feed results are still worth applying
			fmt.Fprintf(os.Stderr, "Warning, some quotes failed: %v\n", err)
		}
	case f.NArg() > 0:
		prices = make(map[string]decimal.Decimal, f.NArg())
		for _, arg := range f.Args() {
			symbol, value, found := strings.Cut(arg, "=")
			if !found {
				fmt.Fprintf(os.Stderr, "Error: argument %q is not SYMBOL=PRICE\n", arg)
				return subcommands.ExitUsageError
			}
			price, err := decimal.NewFromString(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing price %q: %v\n", value, err)
				return subcommands.ExitUsageError
			}
			prices[symbol] = price
		}
	default:
		fmt.Fprintln(os.Stderr, "Error: give SYMBOL=PRICE arguments or a -feed url")
		return subcommands.ExitUsageError
	}

	updated, err := p.UpdatePrices(prices)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if status := saveAndRecord(day, p); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Updated %d of %d positions\n", updated, len(p.Positions()))
	return subcommands.ExitSuccess
}
