package sandbox

import (
	"errors"
	"fmt"
)

// Validation errors for the ledger primitives.
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidFees          = errors.New("fees must not be negative")
	ErrInsufficientPosition = errors.New("insufficient position")
)

// Position is the holding of a single symbol. One position exists per symbol;
// it is created on the first buy, and removed by the portfolio when its
// quantity reaches exactly zero.
type Position struct {
	Symbol       string
	Quantity     Quantity
	CostBasis    Money // volume-weighted average acquisition price per unit
	CurrentPrice Money // last traded or fed price
}

// MarketValue returns quantity times the current price.
func (p *Position) MarketValue() Money {
	return p.CurrentPrice.Mul(p.Quantity)
}

// CostValue returns quantity times the cost basis.
func (p *Position) CostValue() Money {
	return p.CostBasis.Mul(p.Quantity)
}

// UnrealizedPnL is the paper profit or loss on the held quantity.
func (p *Position) UnrealizedPnL() Money {
	return p.MarketValue().Sub(p.CostValue())
}

// UnrealizedPnLPercent is the unrealized profit relative to the cost value.
// It is zero when nothing is held.
func (p *Position) UnrealizedPnLPercent() Percent {
	cost := p.CostValue()
	if cost.IsZero() {
		return 0
	}
	return Percent(100 * p.UnrealizedPnL().AsFloat() / cost.AsFloat())
}

// ApplyBuy adds quantity bought at price to the position, recomputing the
// volume-weighted average cost basis. Buys are the only operation that moves
// the basis. The trade price becomes the position's current price.
func (p *Position) ApplyBuy(quantity Quantity, price Money) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("buy %s: %w, got %s", p.Symbol, ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return fmt.Errorf("buy %s: %w, got %s", p.Symbol, ErrInvalidPrice, price)
	}

	totalCost := p.CostValue().Add(price.Mul(quantity))
	totalQuantity := p.Quantity.Add(quantity)

	p.CostBasis = totalCost.Div(totalQuantity)
	p.Quantity = totalQuantity
	p.CurrentPrice = price
	return nil
}

// ApplySell removes quantity sold at price from the position and returns the
// realized profit or loss against the cost basis. The basis itself is
// unchanged by sells. The caller is responsible for removing the position
// when the remaining quantity is zero.
func (p *Position) ApplySell(quantity Quantity, price Money) (realized Money, err error) {
	if !quantity.IsPositive() {
		return Money{}, fmt.Errorf("sell %s: %w, got %s", p.Symbol, ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return Money{}, fmt.Errorf("sell %s: %w, got %s", p.Symbol, ErrInvalidPrice, price)
	}
	if quantity.GreaterThan(p.Quantity) {
		return Money{}, fmt.Errorf("sell %s: %w: %s > %s", p.Symbol, ErrInsufficientPosition, quantity, p.Quantity)
	}

	realized = price.Sub(p.CostBasis).Mul(quantity)
	p.Quantity = p.Quantity.Sub(quantity)
	return realized, nil
}

// UpdatePrice sets the current price. Market value and unrealized figures are
// always derived from quantity, basis and price, so there is no other state
// to refresh.
func (p *Position) UpdatePrice(price Money) error {
	if !price.IsPositive() {
		return fmt.Errorf("price %s: %w, got %s", p.Symbol, ErrInvalidPrice, price)
	}
	p.CurrentPrice = price
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Position.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", p.Symbol)
	w.Append("quantity", p.Quantity)
	w.Append("costBasis", p.CostBasis.Decimal())
	w.Append("currentPrice", p.CurrentPrice.Decimal())
	return w.MarshalJSON()
}
