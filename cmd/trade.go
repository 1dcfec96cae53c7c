package cmd

import (
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox"
	"github.com/shopspring/decimal"
)

// parseTrade parses the flags shared by buy and sell. Amounts are parsed as
// exact decimals; validation of signs and balances belongs to the portfolio.
func parseTrade(date, quantity, price, fees string) (sandbox.Date, sandbox.Quantity, decimal.Decimal, decimal.Decimal, subcommands.ExitStatus) {
	fail := func(err error) (sandbox.Date, sandbox.Quantity, decimal.Decimal, decimal.Decimal, subcommands.ExitStatus) {
		fmt.Fprintln(os.Stderr, err)
		return sandbox.Date{}, sandbox.Quantity{}, decimal.Zero, decimal.Zero, subcommands.ExitUsageError
	}

	day, err := sandbox.ParseDate(date)
	if err != nil {
		return fail(fmt.Errorf("error parsing date: %w", err))
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return fail(fmt.Errorf("error parsing quantity %q: %w", quantity, err))
	}
	pr, err := decimal.NewFromString(price)
	if err != nil {
		return fail(fmt.Errorf("error parsing price %q: %w", price, err))
	}
	fe, err := decimal.NewFromString(fees)
	if err != nil {
		return fail(fmt.Errorf("error parsing fees %q: %w", fees, err))
	}
	return day, sandbox.Q(q), pr, fe, subcommands.ExitSuccess
}
