package sandbox

import (
	"errors"
	"math"
	"testing"
)

const riskEpsilon = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < riskEpsilon }

func TestPortfolioReturn(t *testing.T) {
	r, err := PortfolioReturn(100, 110)
	if err != nil {
		t.Fatalf("PortfolioReturn() failed: %v", err)
	}
	if !almostEqual(r, 0.10) {
		t.Errorf("return = %v, want 0.10", r)
	}
	if _, err := PortfolioReturn(0, 100); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("zero base error = %v, want ErrDivisionByZero", err)
	}
}

func TestReturns(t *testing.T) {
	returns, err := Returns([]float64{100, 110, 99})
	if err != nil {
		t.Fatalf("Returns() failed: %v", err)
	}
	if len(returns) != 2 || !almostEqual(returns[0], 0.10) || !almostEqual(returns[1], -0.10) {
		t.Errorf("returns = %v, want [0.10 -0.10]", returns)
	}
	if _, err := Returns([]float64{100}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("short series error = %v, want ErrInsufficientData", err)
	}
}

func TestVolatility(t *testing.T) {
	// sample stddev of [0.01, -0.01] is sqrt(2)*0.01
	vol, err := Volatility([]float64{0.01, -0.01}, 252)
	if err != nil {
		t.Fatalf("Volatility() failed: %v", err)
	}
	want := math.Sqrt2 * 0.01 * math.Sqrt(252)
	if !almostEqual(vol, want) {
		t.Errorf("volatility = %v, want %v", vol, want)
	}
	if _, err := Volatility([]float64{0.01}, 252); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("short series error = %v, want ErrInsufficientData", err)
	}
}

func TestSharpeRatio(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.005, 0.015}
	got, err := SharpeRatio(returns, 0.0252, 252)
	if err != nil {
		t.Fatalf("SharpeRatio() failed: %v", err)
	}
	// recompute by hand: excess = r - 0.0001 each
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - 0.0001
	}
	want := mean(excess) / stddev(excess) * math.Sqrt(252)
	if !almostEqual(got, want) {
		t.Errorf("sharpe = %v, want %v", got, want)
	}
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	_, err := SharpeRatio([]float64{0.01, 0.01, 0.01}, 0, 252)
	if !errors.Is(err, ErrZeroVolatility) {
		t.Fatalf("flat returns error = %v, want ErrZeroVolatility", err)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		want     float64
		peak     int
		trough   int
		recovery int
	}{
		{"reference series", []float64{100, 120, 90, 95, 130}, 0.25, 1, 2, 4},
		{"monotonic rise", []float64{100, 110, 120}, 0, 0, 0, -1},
		{"single value", []float64{100}, 0, 0, 0, -1},
		{"never recovers", []float64{100, 50, 60}, 0.5, 0, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dd, err := MaxDrawdown(tt.values)
			if err != nil {
				t.Fatalf("MaxDrawdown() failed: %v", err)
			}
			if !almostEqual(dd.Drawdown, tt.want) || dd.PeakIndex != tt.peak || dd.TroughIndex != tt.trough {
				t.Errorf("drawdown = %+v, want {%v peak:%d trough:%d}", dd, tt.want, tt.peak, tt.trough)
			}
			if dd.RecoveryIndex != tt.recovery {
				t.Errorf("recovery index = %d, want %d", dd.RecoveryIndex, tt.recovery)
			}
		})
	}
}

func TestMaxDrawdown_Empty(t *testing.T) {
	if _, err := MaxDrawdown(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("empty series error = %v, want ErrInsufficientData", err)
	}
}

func TestValueAtRisk(t *testing.T) {
	returns := []float64{-0.05, -0.02, 0, 0.01, 0.03}
	got, err := ValueAtRisk(returns, 0.95)
	if err != nil {
		t.Fatalf("ValueAtRisk() failed: %v", err)
	}
	// 5th percentile, interpolated: -0.05 + 0.2*( -0.02 - -0.05 ) = -0.044
	if !almostEqual(got, -0.044) {
		t.Errorf("VaR = %v, want -0.044", got)
	}

	// input order must not be mutated
	if returns[0] != -0.05 || returns[4] != 0.03 {
		t.Errorf("input mutated: %v", returns)
	}
}

func TestValueAtRisk_InvalidConfidence(t *testing.T) {
	for _, c := range []float64{0, 1, -0.5, 1.5} {
		if _, err := ValueAtRisk([]float64{0.01, -0.01}, c); !errors.Is(err, ErrInvalidConfidence) {
			t.Errorf("confidence %v error = %v, want ErrInvalidConfidence", c, err)
		}
	}
}

func TestExpectedShortfall(t *testing.T) {
	returns := []float64{-0.05, -0.02, 0, 0.01, 0.03}
	got, err := ExpectedShortfall(returns, 0.95)
	if err != nil {
		t.Fatalf("ExpectedShortfall() failed: %v", err)
	}
	// only -0.05 sits at or below the -0.044 threshold
	if !almostEqual(got, -0.05) {
		t.Errorf("ES = %v, want -0.05", got)
	}
}

func TestBeta(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, 0.005}
	// portfolio moves exactly twice the market
	portfolio := make([]float64, len(market))
	for i, r := range market {
		portfolio[i] = 2 * r
	}
	got, err := Beta(portfolio, market)
	if err != nil {
		t.Fatalf("Beta() failed: %v", err)
	}
	if !almostEqual(got, 2) {
		t.Errorf("beta = %v, want 2", got)
	}

	if _, err := Beta(portfolio, market[:2]); !errors.Is(err, ErrMismatchedSeries) {
		t.Errorf("mismatched series error = %v, want ErrMismatchedSeries", err)
	}
	if _, err := Beta([]float64{0.01, 0.02}, []float64{0.01, 0.01}); !errors.Is(err, ErrZeroVolatility) {
		t.Errorf("flat market error = %v, want ErrZeroVolatility", err)
	}
}

func TestTrackingError(t *testing.T) {
	portfolio := []float64{0.01, 0.02, -0.01}
	benchmark := []float64{0.012, 0.018, -0.008}
	got, err := TrackingError(portfolio, benchmark, 252)
	if err != nil {
		t.Fatalf("TrackingError() failed: %v", err)
	}
	diff := []float64{-0.002, 0.002, -0.002}
	want := stddev(diff) * math.Sqrt(252)
	if !almostEqual(got, want) {
		t.Errorf("tracking error = %v, want %v", got, want)
	}
}

func TestNewRiskReport(t *testing.T) {
	values := []float64{100000, 102000, 99000, 101000, 104000}
	report, err := NewRiskReport(values, 0.02)
	if err != nil {
		t.Fatalf("NewRiskReport() failed: %v", err)
	}
	if report.Observations != 5 {
		t.Errorf("observations = %d, want 5", report.Observations)
	}
	if !report.TotalReturn.Equal(Percent(4)) {
		t.Errorf("total return = %v, want 4%%", report.TotalReturn)
	}
	if report.MaxDrawdown.PeakIndex != 1 || report.MaxDrawdown.TroughIndex != 2 {
		t.Errorf("drawdown = %+v, want peak 1 trough 2", report.MaxDrawdown)
	}
	if math.IsNaN(report.Sharpe) {
		t.Error("sharpe is NaN for a series with dispersion")
	}

	if _, err := NewRiskReport([]float64{100, 110}, 0.02); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("short series error = %v, want ErrInsufficientData", err)
	}
}

func TestNewRiskReport_FlatSeries(t *testing.T) {
	report, err := NewRiskReport([]float64{100, 100, 100, 100}, 0.02)
	if err != nil {
		t.Fatalf("NewRiskReport() failed: %v", err)
	}
	if !math.IsNaN(report.Sharpe) {
		t.Errorf("sharpe = %v, want NaN on flat series", report.Sharpe)
	}
}
