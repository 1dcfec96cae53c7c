package sandbox

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when a buy costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnknownSymbol is returned when an operation targets a symbol with no open position.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrCurrencyMismatch is returned when an amount is not denominated in the portfolio currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Portfolio is a simulated trading ledger: a cash balance, the set of open
// positions, and the append-only transaction log that produced them.
//
// All mutations validate their arguments before touching any state, so a
// failed operation leaves the portfolio exactly as it was. Amounts are exact
// decimals in a single currency fixed at creation. A Portfolio is not safe
// for concurrent use.
type Portfolio struct {
	created     Date
	initialCash Money
	cash        Money
	positions   map[string]*Position
	log         []Transaction
	realized    Money
	nextID      int64
}

// New creates an empty portfolio funded with the given cash balance.
func New(created Date, initialCash Money) (*Portfolio, error) {
	if initialCash.IsNegative() {
		return nil, fmt.Errorf("initial cash %s: %w", initialCash, ErrInvalidPrice)
	}
	return &Portfolio{
		created:     created,
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*Position),
		realized:    M(0, initialCash.Currency()),
		nextID:      1,
	}, nil
}

// Created returns the portfolio's creation date.
func (p *Portfolio) Created() Date { return p.created }

// Currency returns the portfolio's currency code.
func (p *Portfolio) Currency() string { return p.cash.Currency() }

// Cash returns the current cash balance.
func (p *Portfolio) Cash() Money { return p.cash }

// InitialCash returns the cash balance the portfolio was created with.
func (p *Portfolio) InitialCash() Money { return p.initialCash }

// RealizedPnL returns the cumulative realized profit and loss over all sells.
func (p *Portfolio) RealizedPnL() Money { return p.realized }

// Position returns the open position for symbol, or false when none is held.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns all open positions sorted by symbol.
func (p *Portfolio) Positions() []Position {
	list := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		list = append(list, *pos)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list
}

// Transactions returns the transaction log in execution order.
// The returned slice is a copy; the log itself is never mutated.
func (p *Portfolio) Transactions() []Transaction {
	log := make([]Transaction, len(p.log))
	copy(log, p.log)
	return log
}

func (p *Portfolio) checkCurrency(amounts ...Money) error {
	for _, a := range amounts {
		if a.Currency() != "" && a.Currency() != p.Currency() {
			return fmt.Errorf("%s vs portfolio %s: %w", a.Currency(), p.Currency(), ErrCurrencyMismatch)
		}
	}
	return nil
}

// ExecuteBuy purchases quantity of symbol at price, paying fees on top, and
// appends the resulting transaction to the log. The cost basis of an existing
// position is blended by quantity-weighted average. It returns
// ErrInsufficientFunds when the total cost exceeds the cash balance.
func (p *Portfolio) ExecuteBuy(day Date, symbol string, quantity Quantity, price, fees Money, memo string) (Transaction, error) {
	if symbol == "" {
		return Transaction{}, fmt.Errorf("buy: empty symbol: %w", ErrUnknownSymbol)
	}
	if err := p.checkCurrency(price, fees); err != nil {
		return Transaction{}, fmt.Errorf("buy %s: %w", symbol, err)
	}
	if !quantity.IsPositive() {
		return Transaction{}, fmt.Errorf("buy %s quantity %s: %w", symbol, quantity, ErrInvalidQuantity)
	}
	if !price.IsPositive() {
		return Transaction{}, fmt.Errorf("buy %s price %s: %w", symbol, price, ErrInvalidPrice)
	}
	if fees.IsNegative() {
		return Transaction{}, fmt.Errorf("buy %s fees %s: %w", symbol, fees, ErrInvalidFees)
	}

	cost := price.Mul(quantity).Add(fees)
	if p.cash.LessThan(cost) {
		return Transaction{}, fmt.Errorf("buy %s costs %s, have %s: %w", symbol, cost, p.cash, ErrInsufficientFunds)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol, Quantity: Q(0), CostBasis: M(0, p.Currency()), CurrentPrice: M(0, p.Currency())}
	}
	if err := pos.ApplyBuy(quantity, price); err != nil {
		return Transaction{}, fmt.Errorf("buy %s: %w", symbol, err)
	}
	p.positions[symbol] = pos
	p.cash = p.cash.Sub(cost)

	tx := newBuyTransaction(p.nextID, day, symbol, quantity, price, fees, memo)
	p.nextID++
	p.log = append(p.log, tx)
	return tx, nil
}

// ExecuteSell sells quantity of symbol at price, deducting fees from the
// proceeds, and appends the resulting transaction to the log. Realized P&L is
// (price - cost basis) * quantity, before fees. A position sold down to zero
// is closed and removed. It returns ErrUnknownSymbol when no position exists,
// ErrInsufficientPosition when quantity exceeds the holding, and
// ErrInsufficientFunds when fees exceed both the proceeds and the cash
// balance.
func (p *Portfolio) ExecuteSell(day Date, symbol string, quantity Quantity, price, fees Money, memo string) (Transaction, error) {
	if err := p.checkCurrency(price, fees); err != nil {
		return Transaction{}, fmt.Errorf("sell %s: %w", symbol, err)
	}
	if !quantity.IsPositive() {
		return Transaction{}, fmt.Errorf("sell %s quantity %s: %w", symbol, quantity, ErrInvalidQuantity)
	}
	if !price.IsPositive() {
		return Transaction{}, fmt.Errorf("sell %s price %s: %w", symbol, price, ErrInvalidPrice)
	}
	if fees.IsNegative() {
		return Transaction{}, fmt.Errorf("sell %s fees %s: %w", symbol, fees, ErrInvalidFees)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		return Transaction{}, fmt.Errorf("sell %s: %w", symbol, ErrUnknownSymbol)
	}

	// Fees above proceeds drain cash like a buy does and must be covered.
	proceeds := price.Mul(quantity).Sub(fees)
	if p.cash.Add(proceeds).IsNegative() {
		return Transaction{}, fmt.Errorf("sell %s nets %s, have %s: %w", symbol, proceeds, p.cash, ErrInsufficientFunds)
	}

	realized, err := pos.ApplySell(quantity, price)
	if err != nil {
		return Transaction{}, fmt.Errorf("sell %s: %w", symbol, err)
	}
	if pos.Quantity.IsZero() {
		delete(p.positions, symbol)
	}

	p.cash = p.cash.Add(proceeds)
	p.realized = p.realized.Add(realized)

	tx := newSellTransaction(p.nextID, day, symbol, quantity, price, fees, realized, memo)
	p.nextID++
	p.log = append(p.log, tx)
	return tx, nil
}

// UpdatePrices marks all held symbols present in prices to their new value
// and reports how many positions were updated. The update is all or nothing:
// if any held symbol carries a non-positive price, no position is touched.
// Symbols without an open position are silently ignored, modelling a broad
// market feed, whatever their price.
func (p *Portfolio) UpdatePrices(prices map[string]decimal.Decimal) (int, error) {
	for symbol, price := range prices {
		if _, ok := p.positions[symbol]; !ok {
			continue
		}
		if !price.IsPositive() {
			return 0, fmt.Errorf("update %s price %s: %w", symbol, price, ErrInvalidPrice)
		}
	}
	updated := 0
	for symbol, price := range prices {
		pos, ok := p.positions[symbol]
		if !ok {
			continue
		}
		pos.UpdatePrice(M(price, p.Currency()))
		updated++
	}
	return updated, nil
}

// HoldingsValue returns the mark-to-market value of all open positions.
func (p *Portfolio) HoldingsValue() Money {
	total := M(0, p.Currency())
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// TotalValue returns cash plus the mark-to-market value of all holdings.
func (p *Portfolio) TotalValue() Money {
	return p.cash.Add(p.HoldingsValue())
}

// UnrealizedPnL returns the aggregate unrealized profit and loss over all
// open positions.
func (p *Portfolio) UnrealizedPnL() Money {
	total := M(0, p.Currency())
	for _, pos := range p.positions {
		total = total.Add(pos.UnrealizedPnL())
	}
	return total
}

// Summary is a point-in-time snapshot of the portfolio's headline figures,
// computed freshly from current state. No derived value is cached.
type Summary struct {
	Currency      string
	Cash          Money
	HoldingsValue Money
	TotalValue    Money
	RealizedPnL   Money
	UnrealizedPnL Money
	TotalPnL      Money
	Return        Percent // total value vs initial cash
	Positions     []Position
	Transactions  int
}

// Summary computes the portfolio's headline figures and per-position rows.
func (p *Portfolio) Summary() *Summary {
	holdings := p.HoldingsValue()
	total := p.cash.Add(holdings)
	unrealized := p.UnrealizedPnL()

	var ret Percent
	if p.initialCash.IsPositive() {
		ret = Percent(total.Sub(p.initialCash).Decimal().Div(p.initialCash.Decimal()).InexactFloat64() * 100)
	}
	return &Summary{
		Currency:      p.Currency(),
		Cash:          p.cash,
		HoldingsValue: holdings,
		TotalValue:    total,
		RealizedPnL:   p.realized,
		UnrealizedPnL: unrealized,
		TotalPnL:      p.realized.Add(unrealized),
		Return:        ret,
		Positions:     p.Positions(),
		Transactions:  len(p.log),
	}
}

// RiskReport derives risk metrics from a total-value series, typically the
// output of History.TotalValues. Computation is delegated entirely to the
// risk calculator; the portfolio contributes nothing but the call.
func (p *Portfolio) RiskReport(totalValues []float64, riskFree float64) (*RiskReport, error) {
	return NewRiskReport(totalValues, riskFree)
}

// MarshalJSON implements the json.Marshaler interface for Summary.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", s.Currency)
	w.Append("cash", s.Cash.Decimal())
	w.Append("holdingsValue", s.HoldingsValue.Decimal())
	w.Append("totalValue", s.TotalValue.Decimal())
	w.Append("realizedPnl", s.RealizedPnL.Decimal())
	w.Append("unrealizedPnl", s.UnrealizedPnL.Decimal())
	w.Append("totalPnl", s.TotalPnL.Decimal())
	w.Append("returnPct", float64(s.Return))
	w.Append("positions", s.Positions)
	w.Append("transactions", s.Transactions)
	return w.MarshalJSON()
}
