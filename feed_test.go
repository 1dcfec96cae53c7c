package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFeed_Fetch(t *testing.T) {
	quotes := map[string]string{
		"AAPL": `{"quote":{"symbol":"AAPL","last":155.25}}`,
		"MSFT": `{"quote":{"symbol":"MSFT","last":"402,50"}}`, // string, comma decimal
		"FLAT": `{"quote":{"symbol":"FLAT","last":null}}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		body, ok := quotes[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	feed := newTestFeed(server.Client(), server.URL+"/?symbol=%s", "$.quote.last")

	tests := []struct {
		symbol  string
		want    decimal.Decimal
		wantErr bool
	}{
		{"AAPL", decimal.NewFromFloat(155.25), false},
		{"MSFT", decimal.RequireFromString("402.50"), false},
		{"FLAT", decimal.Zero, true},
		{"GONE", decimal.Zero, true},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := feed.Fetch(tt.symbol)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch(%s) error = %v, wantErr %v", tt.symbol, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("Fetch(%s) = %s, want %s", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestFeed_FetchAll_Partial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "AAPL" {
			fmt.Fprint(w, `{"last":155.25}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	feed := newTestFeed(server.Client(), server.URL+"/?symbol=%s", "$.last")
	prices, err := feed.FetchAll([]string{"AAPL", "GONE"})

	// one dead quote must not block the live one
	if err == nil {
		t.Error("FetchAll() error = nil, want the GONE failure reported")
	}
	if len(prices) != 1 {
		t.Fatalf("got %d prices, want 1", len(prices))
	}
	if !prices["AAPL"].Equal(decimal.NewFromFloat(155.25)) {
		t.Errorf("AAPL = %s, want 155.25", prices["AAPL"])
	}
}

func TestFeed_NoQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"last":"not a number"}`)
	}))
	defer server.Close()

	feed := newTestFeed(server.Client(), server.URL+"/?symbol=%s", "$.last")
	if _, err := feed.Fetch("AAPL"); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("Fetch() error = %v, want ErrNoQuote", err)
	}
}

func TestFeed_FeedsUpdatePrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"last":155}`)
	}))
	defer server.Close()

	p := newTestPortfolio(t, 100000)
	if _, err := p.ExecuteBuy(Today(), "AAPL", Q(10), M(150, "USD"), M(0, "USD"), ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	feed := newTestFeed(server.Client(), server.URL+"/?symbol=%s", "$.last")
	prices, err := feed.FetchAll([]string{"AAPL"})
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}
	if _, err := p.UpdatePrices(prices); err != nil {
		t.Fatalf("UpdatePrices() failed: %v", err)
	}
	if pos, _ := p.Position("AAPL"); !pos.CurrentPrice.Equal(M(155, "USD")) {
		t.Errorf("current price = %s, want 155", pos.CurrentPrice)
	}
}
