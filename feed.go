package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ErrNoQuote is returned when the feed document holds no usable price for a symbol.
var ErrNoQuote = errors.New("no quote in feed response")

// Feed reads spot prices from a JSON quote endpoint. The endpoint URL is a
// pattern with a single %s verb for the symbol, and the price is extracted
// from the response with a jsonpath expression. The output is untrusted
// market data; the portfolio re-validates it in UpdatePrices.
type Feed struct {
	client  *http.Client
	pattern string // URL pattern, one %s for the symbol
	path    string // jsonpath to the price in the response
}

// NewFeed creates a feed over the given URL pattern and jsonpath expression.
// Responses are cached on disk with a daily expiry, so repeated updates on
// the same day do not hammer the quote service.
func NewFeed(pattern, path string) *Feed {
	return &Feed{client: daily(), pattern: pattern, path: path}
}

// newTestFeed bypasses the disk cache, for tests against httptest servers.
func newTestFeed(client *http.Client, pattern, path string) *Feed {
	return &Feed{client: client, pattern: pattern, path: path}
}

// Fetch retrieves the current price for one symbol.
func (f *Feed) Fetch(symbol string) (decimal.Decimal, error) {
	addr := fmt.Sprintf(f.pattern, symbol)
	var jobj any
	if err := jwget(f.client, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	jval, err := jsonpath.Get(f.path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %q %w", symbol, f.path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	if val, ok := jval.(float64); ok {
		return decimal.NewFromFloat(val), nil
	}
	// some quote APIs return the value as a string, possibly comma-decimal
	if sval, ok := jval.(string); ok {
		sval = strings.ReplaceAll(sval, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		if _, err := strconv.ParseFloat(sval, 64); err != nil {
			return decimal.Zero, fmt.Errorf("cannot read value for %q: invalid string %q: %w", symbol, sval, ErrNoQuote)
		}
		return decimal.NewFromString(sval)
	}
	return decimal.Zero, fmt.Errorf("cannot read value for %q at %q: neither float nor string (%v): %w", symbol, f.path, jval, ErrNoQuote)
}

// FetchAll retrieves prices for all given symbols. Symbols that fail are
// left out of the map; their errors are joined and returned alongside the
// partial result, so one dead quote does not block a whole market update.
func (f *Feed) FetchAll(symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))
	var errs []error
	for _, symbol := range symbols {
		price, err := f.Fetch(symbol)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prices[symbol] = price
	}
	return prices, errors.Join(errs...)
}
