package sandbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// ValueRecord is one daily observation of the portfolio's headline values.
type ValueRecord struct {
	Date          Date
	TotalValue    decimal.Decimal
	Cash          decimal.Decimal
	HoldingsValue decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
}

// NewValueRecord observes the portfolio's current values on the given date.
func NewValueRecord(day Date, p *Portfolio) ValueRecord {
	return ValueRecord{
		Date:          day,
		TotalValue:    p.TotalValue().Decimal(),
		Cash:          p.Cash().Decimal(),
		HoldingsValue: p.HoldingsValue().Decimal(),
		UnrealizedPnL: p.UnrealizedPnL().Decimal(),
		RealizedPnL:   p.RealizedPnL().Decimal(),
	}
}

// MarshalJSON implements the json.Marshaler interface for ValueRecord.
func (r ValueRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("totalValue", r.TotalValue)
	w.Append("cash", r.Cash)
	w.Append("holdingsValue", r.HoldingsValue)
	w.Append("unrealizedPnl", r.UnrealizedPnL)
	w.Append("realizedPnl", r.RealizedPnL)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for ValueRecord.
func (r *ValueRecord) UnmarshalJSON(data []byte) error {
	var temp struct {
		Date          Date            `json:"date"`
		TotalValue    decimal.Decimal `json:"totalValue"`
		Cash          decimal.Decimal `json:"cash"`
		HoldingsValue decimal.Decimal `json:"holdingsValue"`
		UnrealizedPnL decimal.Decimal `json:"unrealizedPnl"`
		RealizedPnL   decimal.Decimal `json:"realizedPnl"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*r = ValueRecord(temp)
	return nil
}

// History is a date-ordered series of daily value observations, at most one
// per date. It feeds the risk calculator; the portfolio itself never holds a
// series, only point-in-time state.
type History struct {
	records []ValueRecord
}

// Len returns the number of observations.
func (h *History) Len() int { return len(h.records) }

// Records returns the observations in date order.
func (h *History) Records() []ValueRecord { return h.records }

// AppendOrUpdate inserts the record at its date position, replacing any
// existing observation on the same date.
func (h *History) AppendOrUpdate(rec ValueRecord) {
	i := sort.Search(len(h.records), func(i int) bool { return !h.records[i].Date.Before(rec.Date) })
	if i < len(h.records) && h.records[i].Date == rec.Date {
		h.records[i] = rec
		return
	}
	h.records = append(h.records, ValueRecord{})
	copy(h.records[i+1:], h.records[i:])
	h.records[i] = rec
}

// On returns the observation on the given date, or false when none exists.
func (h *History) On(day Date) (ValueRecord, bool) {
	i := sort.Search(len(h.records), func(i int) bool { return !h.records[i].Date.Before(day) })
	if i < len(h.records) && h.records[i].Date == day {
		return h.records[i], true
	}
	return ValueRecord{}, false
}

// TotalValues returns the total-value series as float64, in date order,
// ready for the risk calculator.
func (h *History) TotalValues() []float64 {
	values := make([]float64, len(h.records))
	for i, rec := range h.records {
		values[i] = rec.TotalValue.InexactFloat64()
	}
	return values
}

// EncodeHistory persists the history to an io.Writer in JSONL format, one
// observation per line, in date order.
func EncodeHistory(w io.Writer, h *History) error {
	decimal.MarshalJSONWithoutQuotes = true
	for _, rec := range h.records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal history record: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write history record: %w", err)
		}
	}
	return nil
}

// DecodeHistory decodes observations from a stream of JSONL data.
// Records are re-ordered by date; duplicate dates keep the last record seen.
func DecodeHistory(r io.Reader) (*History, error) {
	h := &History{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ValueRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("could not decode history line %q: %w", string(line), err)
		}
		h.AppendOrUpdate(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return h, nil
}
