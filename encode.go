package sandbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrCorruptState is returned by DecodeSnapshot when the stored positions or
// cash balance disagree with a replay of the transaction log.
var ErrCorruptState = errors.New("corrupt snapshot state")

// EncodeSnapshot persists the whole portfolio as a single indented JSON
// document: currency, creation date, cash balances, open positions sorted by
// symbol, and the transaction log in execution order.
func EncodeSnapshot(w io.Writer, p *Portfolio) error {
	decimal.MarshalJSONWithoutQuotes = true

	var doc jsonObjectWriter
	doc.Append("currency", p.Currency())
	doc.Append("created", p.Created())
	doc.Append("initialCash", p.InitialCash().Decimal())
	doc.Append("cash", p.Cash().Decimal())
	doc.Append("positions", p.Positions())
	doc.Append("transactions", p.Transactions())

	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent snapshot: %w", err)
	}
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// positionDoc and transactionDoc are specialized structs for decoding json.
// Amounts are stored as bare decimals; the document currency applies to all.
type positionDoc struct {
	Symbol       string          `json:"symbol"`
	Quantity     Quantity        `json:"quantity"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

type transactionDoc struct {
	ID          int64           `json:"id"`
	Date        Date            `json:"date"`
	Type        TransactionType `json:"type"`
	Symbol      string          `json:"symbol"`
	Quantity    Quantity        `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fees        decimal.Decimal `json:"fees"`
	Amount      decimal.Decimal `json:"amount"`
	RealizedPnL decimal.Decimal `json:"realizedPnl"`
	Memo        string          `json:"memo"`
}

// DecodeSnapshot reads a snapshot document and rebuilds the portfolio.
// The transaction log is replayed from the initial cash balance and the
// result compared against the stored positions and cash; any disagreement
// fails with ErrCorruptState rather than silently trusting the document.
func DecodeSnapshot(r io.Reader) (*Portfolio, error) {
	var doc struct {
		Currency     string           `json:"currency"`
		Created      Date             `json:"created"`
		InitialCash  decimal.Decimal  `json:"initialCash"`
		Cash         decimal.Decimal  `json:"cash"`
		Positions    []positionDoc    `json:"positions"`
		Transactions []transactionDoc `json:"transactions"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Currency == "" {
		return nil, fmt.Errorf("snapshot has no currency: %w", ErrCorruptState)
	}
	if doc.InitialCash.IsNegative() {
		return nil, fmt.Errorf("snapshot initial cash %s: %w", doc.InitialCash, ErrCorruptState)
	}

	p, err := New(doc.Created, M(doc.InitialCash, doc.Currency))
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild portfolio: %w", err)
	}

	// Replay the log through the regular execution path. This re-derives
	// cash, cost basis and realized PnL from first principles.
	for _, tx := range doc.Transactions {
		price := M(tx.Price, doc.Currency)
		fees := M(tx.Fees, doc.Currency)
		var replayed Transaction
		var err error
		switch tx.Type {
		case BuyTransaction:
			replayed, err = p.ExecuteBuy(tx.Date, tx.Symbol, tx.Quantity, price, fees, tx.Memo)
		case SellTransaction:
			replayed, err = p.ExecuteSell(tx.Date, tx.Symbol, tx.Quantity, price, fees, tx.Memo)
		default:
			return nil, fmt.Errorf("transaction %d has unknown type %q: %w", tx.ID, tx.Type, ErrCorruptState)
		}
		if err != nil {
			return nil, fmt.Errorf("replay of transaction %d failed (%v): %w", tx.ID, err, ErrCorruptState)
		}
		if replayed.ID != tx.ID {
			return nil, fmt.Errorf("transaction id %d stored, %d replayed: %w", tx.ID, replayed.ID, ErrCorruptState)
		}
		if !replayed.Amount.Decimal().Equal(tx.Amount) {
			return nil, fmt.Errorf("transaction %d amount %s stored, %s replayed: %w", tx.ID, tx.Amount, replayed.Amount.Decimal(), ErrCorruptState)
		}
		if tx.Type == SellTransaction && !replayed.RealizedPnL.Decimal().Equal(tx.RealizedPnL) {
			return nil, fmt.Errorf("transaction %d realized pnl %s stored, %s replayed: %w", tx.ID, tx.RealizedPnL, replayed.RealizedPnL.Decimal(), ErrCorruptState)
		}
	}

	// Cash conservation: initial cash plus the signed amounts must land on
	// the stored balance.
	if !p.Cash().Decimal().Equal(doc.Cash) {
		return nil, fmt.Errorf("cash %s stored, %s replayed: %w", doc.Cash, p.Cash().Decimal(), ErrCorruptState)
	}

	// Stored positions must agree with the replay on quantity and basis.
	if len(doc.Positions) != len(p.positions) {
		return nil, fmt.Errorf("%d positions stored, %d replayed: %w", len(doc.Positions), len(p.positions), ErrCorruptState)
	}
	for _, stored := range doc.Positions {
		pos, ok := p.positions[stored.Symbol]
		if !ok {
			return nil, fmt.Errorf("position %s stored but not replayed: %w", stored.Symbol, ErrCorruptState)
		}
		if !pos.Quantity.Equal(stored.Quantity) {
			return nil, fmt.Errorf("position %s quantity %s stored, %s replayed: %w", stored.Symbol, stored.Quantity, pos.Quantity, ErrCorruptState)
		}
		if !pos.CostBasis.Decimal().Equal(stored.CostBasis) {
			return nil, fmt.Errorf("position %s cost basis %s stored, %s replayed: %w", stored.Symbol, stored.CostBasis, pos.CostBasis.Decimal(), ErrCorruptState)
		}
		// The current price is market data, not derivable from the log,
		// but only positive prices can ever enter through a trade or a
		// price update.
		if !stored.CurrentPrice.IsPositive() {
			return nil, fmt.Errorf("position %s current price %s: %w", stored.Symbol, stored.CurrentPrice, ErrCorruptState)
		}
		pos.CurrentPrice = M(stored.CurrentPrice, doc.Currency)
	}
	return p, nil
}
