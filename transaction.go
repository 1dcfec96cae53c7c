package sandbox

// TransactionType is a typed string identifying the side of a trade.
type TransactionType string

const (
	BuyTransaction  TransactionType = "BUY"
	SellTransaction TransactionType = "SELL"
)

// Transaction is one immutable record of the portfolio's append-only log.
// The log is the audit trail of all cash and position changes: records are
// never mutated or deleted after creation.
type Transaction struct {
	ID          int64           // monotonic, assigned by the portfolio
	Date        Date            // trade date
	Type        TransactionType // BUY or SELL
	Symbol      string
	Quantity    Quantity
	Price       Money // per unit
	Fees        Money
	Amount      Money // signed cash effect: -(q*price+fees) for BUY, +(q*price-fees) for SELL
	RealizedPnL Money // SELL only, zero otherwise
	Memo        string
}

func newBuyTransaction(id int64, day Date, symbol string, quantity Quantity, price, fees Money, memo string) Transaction {
	return Transaction{
		ID:       id,
		Date:     day,
		Type:     BuyTransaction,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Fees:     fees,
		Amount:   price.Mul(quantity).Add(fees).Neg(),
		Memo:     memo,
	}
}

func newSellTransaction(id int64, day Date, symbol string, quantity Quantity, price, fees Money, realized Money, memo string) Transaction {
	return Transaction{
		ID:          id,
		Date:        day,
		Type:        SellTransaction,
		Symbol:      symbol,
		Quantity:    quantity,
		Price:       price,
		Fees:        fees,
		Amount:      price.Mul(quantity).Sub(fees),
		RealizedPnL: realized,
		Memo:        memo,
	}
}

// IsBuy reports whether the transaction is a buy.
func (t Transaction) IsBuy() bool { return t.Type == BuyTransaction }

// IsSell reports whether the transaction is a sell.
func (t Transaction) IsSell() bool { return t.Type == SellTransaction }

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Append("symbol", t.Symbol)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Append("fees", t.Fees.Decimal())
	w.Append("amount", t.Amount.Decimal())
	if t.IsSell() {
		w.Append("realizedPnl", t.RealizedPnL.Decimal())
	}
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}
