package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/quantfolio/sandbox"
)

// SummaryMarkdown renders the portfolio summary to a markdown string.
func SummaryMarkdown(day sandbox.Date, s *sandbox.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Summary on %s", day))
	doc.PlainText(fmt.Sprintf("Total Value: %s", s.TotalValue))

	doc.H2("Balances")
	doc.Table(md.TableSet{
		Header: []string{"Item", "Value"},
		Rows: [][]string{
			{"Cash", s.Cash.String()},
			{"Holdings", s.HoldingsValue.String()},
			{"Realized PnL", s.RealizedPnL.SignedString()},
			{"Unrealized PnL", s.UnrealizedPnL.SignedString()},
			{"Total PnL", s.TotalPnL.SignedString()},
			{"Return", s.Return.SignedString()},
		},
	})

	if len(s.Positions) > 0 {
		doc.H2("Positions")
		rows := make([][]string, 0, len(s.Positions))
		for _, pos := range s.Positions {
			rows = append(rows, []string{
				pos.Symbol,
				pos.Quantity.String(),
				pos.CostBasis.String(),
				pos.CurrentPrice.String(),
				pos.MarketValue().String(),
				pos.UnrealizedPnL().SignedString(),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Symbol", "Quantity", "Cost Basis", "Price", "Value", "Unrealized"},
			Rows:   rows,
		})
	}

	return doc.String()
}
