package renderer

import (
	"fmt"
	"strings"

	"github.com/quantfolio/sandbox"
)

// Transaction renders a transaction to a one line string.
func Transaction(tx sandbox.Transaction) string {
	switch tx.Type {
	case sandbox.BuyTransaction:
		return fmt.Sprintf("Bought %s of %s at %s (fees %s)", tx.Quantity, tx.Symbol, tx.Price, tx.Fees)
	case sandbox.SellTransaction:
		return fmt.Sprintf("Sold %s of %s at %s (fees %s, realized %s)", tx.Quantity, tx.Symbol, tx.Price, tx.Fees, tx.RealizedPnL.SignedString())
	default:
		return fmt.Sprintf("%s %s", tx.Type, tx.Symbol)
	}
}

// LogMarkdown generates a markdown table from the transaction log.
func LogMarkdown(txs []sandbox.Transaction) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "## Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintf(b, "No transactions.\n")
		return b.String()
	}
	fmt.Fprintf(b, "| ID | Date | Type | Symbol | Quantity | Price | Fees | Amount | Realized |\n")
	fmt.Fprintf(b, "|---:|:---|:---|:---|---:|---:|---:|---:|---:|\n")
	for _, tx := range txs {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			tx.ID, tx.Date, tx.Type, tx.Symbol, tx.Quantity, tx.Price, tx.Fees,
			tx.Amount.SignedString(), tx.RealizedPnL.SignedString())
	}
	return b.String()
}

// HistoryMarkdown generates a markdown table from the value history.
func HistoryMarkdown(h *sandbox.History) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "## Value History\n\n")
	if h.Len() == 0 {
		fmt.Fprintf(b, "No observations.\n")
		return b.String()
	}
	fmt.Fprintf(b, "| Date | Total | Cash | Holdings | Unrealized | Realized |\n")
	fmt.Fprintf(b, "|:---|---:|---:|---:|---:|---:|\n")
	for _, rec := range h.Records() {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			rec.Date, rec.TotalValue.StringFixed(2), rec.Cash.StringFixed(2),
			rec.HoldingsValue.StringFixed(2), rec.UnrealizedPnL.StringFixed(2), rec.RealizedPnL.StringFixed(2))
	}
	return b.String()
}
