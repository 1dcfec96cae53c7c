package sandbox

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// newTestPortfolio funds a fresh USD portfolio, failing the test on error.
func newTestPortfolio(t *testing.T, cash int) *Portfolio {
	t.Helper()
	p, err := New(NewDate(2025, 1, 1), M(cash, "USD"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return p
}

func TestPortfolio_EndToEndScenario(t *testing.T) {
	p := newTestPortfolio(t, 100000)
	day := NewDate(2025, 3, 10)

	// buy 100 @ 150, fee 10
	tx, err := p.ExecuteBuy(day, "AAPL", Q(100), M(150, "USD"), M(10, "USD"), "opening")
	if err != nil {
		t.Fatalf("ExecuteBuy() failed: %v", err)
	}
	if !tx.Amount.Equal(M(-15010, "USD")) {
		t.Errorf("buy amount = %s, want -15,010", tx.Amount)
	}
	if !p.Cash().Equal(M(84990, "USD")) {
		t.Errorf("cash after buy = %s, want 84,990", p.Cash())
	}
	pos, ok := p.Position("AAPL")
	if !ok {
		t.Fatal("AAPL position missing after buy")
	}
	if !pos.Quantity.Equal(Q(100)) || !pos.CostBasis.Equal(M(150, "USD")) {
		t.Errorf("position = {qty:%s basis:%s}, want {qty:100 basis:150}", pos.Quantity, pos.CostBasis)
	}

	// sell 40 @ 160, fee 5
	tx, err = p.ExecuteSell(day.Add(5), "AAPL", Q(40), M(160, "USD"), M(5, "USD"), "")
	if err != nil {
		t.Fatalf("ExecuteSell() failed: %v", err)
	}
	if !tx.RealizedPnL.Equal(M(400, "USD")) {
		t.Errorf("realized pnl = %s, want 400", tx.RealizedPnL)
	}
	if !tx.Amount.Equal(M(6395, "USD")) {
		t.Errorf("sell amount = %s, want 6,395", tx.Amount)
	}
	if !p.Cash().Equal(M(91345, "USD")) {
		t.Errorf("cash after sell = %s, want 91,345", p.Cash())
	}
	pos, _ = p.Position("AAPL")
	if !pos.Quantity.Equal(Q(60)) || !pos.CostBasis.Equal(M(150, "USD")) {
		t.Errorf("position = {qty:%s basis:%s}, want {qty:60 basis:150}", pos.Quantity, pos.CostBasis)
	}
	if !p.RealizedPnL().Equal(M(400, "USD")) {
		t.Errorf("cumulative realized = %s, want 400", p.RealizedPnL())
	}
	if got := p.Transactions(); len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("transaction log = %+v, want ids 1,2", got)
	}
}

func TestPortfolio_ExecuteBuy_Failures(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		quantity Quantity
		price    Money
		fees     Money
		wantErr  error
	}{
		{"insufficient funds", "AAPL", Q(100), M(150, "USD"), M(10, "USD"), ErrInsufficientFunds},
		{"empty symbol", "", Q(1), M(1, "USD"), M(0, "USD"), ErrUnknownSymbol},
		{"zero quantity", "AAPL", Q(0), M(1, "USD"), M(0, "USD"), ErrInvalidQuantity},
		{"zero price", "AAPL", Q(1), M(0, "USD"), M(0, "USD"), ErrInvalidPrice},
		{"negative fees", "AAPL", Q(1), M(1, "USD"), M(-1, "USD"), ErrInvalidFees},
		{"wrong currency", "AAPL", Q(1), M(1, "EUR"), M(0, "USD"), ErrCurrencyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPortfolio(t, 1000)
			_, err := p.ExecuteBuy(Today(), tt.symbol, tt.quantity, tt.price, tt.fees, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExecuteBuy() error = %v, want %v", err, tt.wantErr)
			}
			// all or nothing: a failed buy leaves the portfolio untouched
			if !p.Cash().Equal(M(1000, "USD")) || len(p.Positions()) != 0 || len(p.Transactions()) != 0 {
				t.Errorf("portfolio mutated on failed buy: cash=%s positions=%d", p.Cash(), len(p.Positions()))
			}
		})
	}
}

func TestPortfolio_ExecuteSell_Failures(t *testing.T) {
	p := newTestPortfolio(t, 100000)
	if _, err := p.ExecuteBuy(Today(), "AAPL", Q(10), M(100, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}

	if _, err := p.ExecuteSell(Today(), "MSFT", Q(1), M(100, "USD"), M(0, "USD"), ""); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("sell of unheld symbol error = %v, want ErrUnknownSymbol", err)
	}
	if _, err := p.ExecuteSell(Today(), "AAPL", Q(11), M(100, "USD"), M(0, "USD"), ""); !errors.Is(err, ErrInsufficientPosition) {
		t.Errorf("oversell error = %v, want ErrInsufficientPosition", err)
	}

	// no partial mutation
	if pos, _ := p.Position("AAPL"); !pos.Quantity.Equal(Q(10)) {
		t.Errorf("position mutated on failed sells: %+v", pos)
	}
	if !p.Cash().Equal(M(99000, "USD")) {
		t.Errorf("cash mutated on failed sells: %s", p.Cash())
	}
}

func TestPortfolio_SellFeesExceedProceeds(t *testing.T) {
	// drain cash to exactly zero
	p := newTestPortfolio(t, 10000)
	if _, err := p.ExecuteBuy(Today(), "AAPL", Q(10), M(1000, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}
	if !p.Cash().IsZero() {
		t.Fatalf("setup cash = %s, want 0", p.Cash())
	}

	// fees above the proceeds with nothing in cash to cover them
	_, err := p.ExecuteSell(Today(), "AAPL", Q(1), M(1000, "USD"), M(2000, "USD"), "")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("ExecuteSell() error = %v, want ErrInsufficientFunds", err)
	}
	if p.Cash().IsNegative() {
		t.Errorf("cash went negative: %s", p.Cash())
	}
	if pos, _ := p.Position("AAPL"); !pos.Quantity.Equal(Q(10)) {
		t.Errorf("position mutated on rejected sell: %+v", pos)
	}
	if len(p.Transactions()) != 1 {
		t.Errorf("transaction log = %d entries, want 1", len(p.Transactions()))
	}

	// the same sell passes once cash covers the shortfall
	if _, err := p.ExecuteSell(Today(), "AAPL", Q(2), M(1000, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("funding sell failed: %v", err)
	}
	tx, err := p.ExecuteSell(Today(), "AAPL", Q(1), M(1000, "USD"), M(2000, "USD"), "")
	if err != nil {
		t.Fatalf("covered sell failed: %v", err)
	}
	if !tx.Amount.Equal(M(-1000, "USD")) {
		t.Errorf("sell amount = %s, want -1,000", tx.Amount)
	}
	if !p.Cash().Equal(M(1000, "USD")) {
		t.Errorf("cash = %s, want 1,000", p.Cash())
	}
}

func TestPortfolio_SellToZeroClosesPosition(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	if _, err := p.ExecuteBuy(Today(), "AAPL", Q(10), M(100, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := p.ExecuteSell(Today(), "AAPL", Q(10), M(110, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if _, ok := p.Position("AAPL"); ok {
		t.Error("position still present after selling to zero")
	}
	if !p.Cash().Equal(M(10100, "USD")) {
		t.Errorf("cash = %s, want 10,100", p.Cash())
	}
}

func TestPortfolio_UpdatePrices(t *testing.T) {
	p := newTestPortfolio(t, 100000)
	if _, err := p.ExecuteBuy(Today(), "AAPL", Q(10), M(100, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// unheld symbols are ignored, held ones are marked
	updated, err := p.UpdatePrices(map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(120),
		"MSFT": decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("UpdatePrices() failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	pos, _ := p.Position("AAPL")
	if !pos.CurrentPrice.Equal(M(120, "USD")) {
		t.Errorf("current price = %s, want 120", pos.CurrentPrice)
	}

	// all or nothing: one bad price on a held symbol rejects the whole batch
	_, err = p.UpdatePrices(map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(-1),
	})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("UpdatePrices() error = %v, want ErrInvalidPrice", err)
	}
	pos, _ = p.Position("AAPL")
	if !pos.CurrentPrice.Equal(M(120, "USD")) {
		t.Errorf("price mutated by rejected batch: %s", pos.CurrentPrice)
	}

	// a bad price on an unheld symbol is ignored like the symbol itself
	updated, err = p.UpdatePrices(map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(130),
		"MSFT": decimal.NewFromInt(-1),
	})
	if err != nil {
		t.Fatalf("UpdatePrices() failed on unheld bad price: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	pos, _ = p.Position("AAPL")
	if !pos.CurrentPrice.Equal(M(130, "USD")) {
		t.Errorf("current price = %s, want 130", pos.CurrentPrice)
	}
}

func TestPortfolio_Summary(t *testing.T) {
	p := newTestPortfolio(t, 100000)
	day := NewDate(2025, 3, 10)
	if _, err := p.ExecuteBuy(day, "AAPL", Q(100), M(150, "USD"), M(10, "USD"), ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := p.ExecuteSell(day, "AAPL", Q(40), M(160, "USD"), M(5, "USD"), ""); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if _, err := p.UpdatePrices(map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(155)}); err != nil {
		t.Fatalf("UpdatePrices() failed: %v", err)
	}

	s := p.Summary()
	if !s.Cash.Equal(M(91345, "USD")) {
		t.Errorf("summary cash = %s, want 91,345", s.Cash)
	}
	if !s.HoldingsValue.Equal(M(9300, "USD")) { // 60 * 155
		t.Errorf("holdings value = %s, want 9,300", s.HoldingsValue)
	}
	if !s.TotalValue.Equal(M(100645, "USD")) {
		t.Errorf("total value = %s, want 100,645", s.TotalValue)
	}
	if !s.RealizedPnL.Equal(M(400, "USD")) {
		t.Errorf("realized = %s, want 400", s.RealizedPnL)
	}
	if !s.UnrealizedPnL.Equal(M(300, "USD")) { // 60 * (155-150)
		t.Errorf("unrealized = %s, want 300", s.UnrealizedPnL)
	}
	if !s.TotalPnL.Equal(M(700, "USD")) {
		t.Errorf("total pnl = %s, want 700", s.TotalPnL)
	}
	if !s.Return.Equal(Percent(0.645)) {
		t.Errorf("return = %v, want 0.645%%", s.Return)
	}
	if len(s.Positions) != 1 || s.Transactions != 2 {
		t.Errorf("counts = %d positions, %d transactions, want 1 and 2", len(s.Positions), s.Transactions)
	}
}
